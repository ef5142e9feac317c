package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec records dispatched commands. AddConcept reads its prompts from the
// same reader the REPL loop reads commands from, like the real App does.
type fakeExec struct {
	reader        *bufio.Reader
	calls         []string
	conceptInputs []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeExec) isLoggedIn(ctx context.Context) bool { return false }
func (f *fakeExec) Register(ctx context.Context) error  { return f.record("register") }
func (f *fakeExec) Login(ctx context.Context) error     { return f.record("login") }
func (f *fakeExec) Logout(ctx context.Context) error    { return f.record("logout") }
func (f *fakeExec) News(ctx context.Context, starredOnly bool) error {
	return f.record(fmt.Sprintf("news:%v", starredOnly))
}
func (f *fakeExec) Star(ctx context.Context, id string, starred bool) error {
	return f.record(fmt.Sprintf("star:%s:%v", id, starred))
}
func (f *fakeExec) DeleteNews(ctx context.Context, id string) error {
	return f.record("delnews:" + id)
}
func (f *fakeExec) Concepts(ctx context.Context) error { return f.record("concepts") }
func (f *fakeExec) AddConcept(ctx context.Context) error {
	for _, prompt := range []string{"News item id:", "Term:", "Definition:"} {
		v, err := GetSimpleText(f.reader, prompt, io.Discard)
		if err != nil {
			return err
		}
		f.conceptInputs = append(f.conceptInputs, v)
	}
	return f.record("addconcept")
}
func (f *fakeExec) DeleteConcept(ctx context.Context, id string) error {
	return f.record("delconcept:" + id)
}
func (f *fakeExec) Phrases(ctx context.Context) error   { return f.record("phrases") }
func (f *fakeExec) AddPhrase(ctx context.Context) error { return f.record("addphrase") }
func (f *fakeExec) DeletePhrase(ctx context.Context, id string) error {
	return f.record("delphrase:" + id)
}
func (f *fakeExec) Set(ctx context.Context, key, value string) error {
	return f.record(fmt.Sprintf("set:%s:%s", key, value))
}
func (f *fakeExec) Settings(ctx context.Context) error  { return f.record("settings") }
func (f *fakeExec) Sources(ctx context.Context) error   { return f.record("sources") }
func (f *fakeExec) AddSource(ctx context.Context) error { return f.record("addsource") }
func (f *fakeExec) EnableSource(ctx context.Context, id string, enabled bool) error {
	return f.record(fmt.Sprintf("source:%s:%v", id, enabled))
}
func (f *fakeExec) Import(ctx context.Context, path string) error {
	return f.record("import:" + path)
}
func (f *fakeExec) Sync(ctx context.Context) error   { return f.record("sync") }
func (f *fakeExec) Status(ctx context.Context) error { return f.record("status") }

func noStatus(context.Context) string { return "" }

func runInput(t *testing.T, input string) *fakeExec {
	t.Helper()
	reader := bufio.NewReader(strings.NewReader(input))
	exec := &fakeExec{reader: reader}
	runREPL(context.Background(), exec, noStatus, reader)
	return exec
}

func TestREPL_SharedReader_PromptsSeeFollowingLines(t *testing.T) {
	exec := runInput(t, "addconcept\nn-1\nllm\na large language model\nstar n-1\nexit\n")

	require.Equal(t, []string{"n-1", "llm", "a large language model"}, exec.conceptInputs)
	assert.Equal(t, []string{"addconcept", "star:n-1:true"}, exec.calls)
}

func TestREPL_SourceCommand(t *testing.T) {
	exec := runInput(t, "source s1 off\nsource s1 on\nexit\n")

	assert.Equal(t, []string{"source:s1:false", "source:s1:true"}, exec.calls)
}

func TestREPL_SourceCommand_BadArgs(t *testing.T) {
	exec := runInput(t, "source s1\nsource s1 maybe\nexit\n")

	assert.Empty(t, exec.calls)
}

func TestREPL_EOFWithoutExit_Returns(t *testing.T) {
	exec := runInput(t, "sync\n")

	assert.Equal(t, []string{"sync"}, exec.calls)
}
