package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface is the set of commands the REPL can dispatch. *App implements it;
// tests substitute a fake.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	News(ctx context.Context, starredOnly bool) error
	Star(ctx context.Context, id string, starred bool) error
	DeleteNews(ctx context.Context, id string) error
	Concepts(ctx context.Context) error
	AddConcept(ctx context.Context) error
	DeleteConcept(ctx context.Context, id string) error
	Phrases(ctx context.Context) error
	AddPhrase(ctx context.Context) error
	DeletePhrase(ctx context.Context, id string) error
	Set(ctx context.Context, key, value string) error
	Settings(ctx context.Context) error
	Sources(ctx context.Context) error
	AddSource(ctx context.Context) error
	EnableSource(ctx context.Context, id string, enabled bool) error
	Import(ctx context.Context, path string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

func printHelp(loggedIn bool) {
	fmt.Println("Available commands:")
	if !loggedIn {
		fmt.Println("  register            create an account on the sync server")
		fmt.Println("  login               log in to the sync server")
	} else {
		fmt.Println("  logout              log out and forget the sync watermark")
		fmt.Println("  sync                run a sync round")
	}
	fmt.Println("  news                list news items")
	fmt.Println("  starred             list starred news items")
	fmt.Println("  star <id>           star a news item")
	fmt.Println("  unstar <id>         unstar a news item")
	fmt.Println("  delnews <id>        delete a news item")
	fmt.Println("  concepts            list concepts")
	fmt.Println("  addconcept          add a concept")
	fmt.Println("  delconcept <id>     delete a concept")
	fmt.Println("  phrases             list phrases")
	fmt.Println("  addphrase           add a phrase")
	fmt.Println("  delphrase <id>      delete a phrase")
	fmt.Println("  settings            list settings")
	fmt.Println("  set <key> <value>   change a setting")
	fmt.Println("  sources             list feed sources")
	fmt.Println("  addsource           add a feed source")
	fmt.Println("  source <id> on|off  enable or disable a feed source")
	fmt.Println("  import <file>       import news items from a JSON file")
	fmt.Println("  status              show sync status")
	fmt.Println("  help                show this message")
	fmt.Println("  exit                quit")
}

// runREPL reads commands from reader. The same reader is shared with the
// prompt helpers, so a buffered chunk of piped input is never split between
// two readers.
func runREPL(ctx context.Context, exec execIface, statusLine func(context.Context) string, reader *bufio.Reader) {
	fmt.Println("AI Daily. Type 'help' for a list of commands.")

	for {
		if s := statusLine(ctx); s != "" {
			fmt.Printf("%s ", s)
		}
		fmt.Print("> ")

		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		var err error
		switch cmd {
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		case "help":
			printHelp(exec.isLoggedIn(ctx))
		case "register":
			err = exec.Register(ctx)
		case "login":
			err = exec.Login(ctx)
		case "logout":
			err = exec.Logout(ctx)
		case "news":
			err = exec.News(ctx, false)
		case "starred":
			err = exec.News(ctx, true)
		case "star":
			err = withIDArg(ctx, args, func(ctx context.Context, id string) error {
				return exec.Star(ctx, id, true)
			})
		case "unstar":
			err = withIDArg(ctx, args, func(ctx context.Context, id string) error {
				return exec.Star(ctx, id, false)
			})
		case "delnews":
			err = withIDArg(ctx, args, exec.DeleteNews)
		case "concepts":
			err = exec.Concepts(ctx)
		case "addconcept":
			err = exec.AddConcept(ctx)
		case "delconcept":
			err = withIDArg(ctx, args, exec.DeleteConcept)
		case "phrases":
			err = exec.Phrases(ctx)
		case "addphrase":
			err = exec.AddPhrase(ctx)
		case "delphrase":
			err = withIDArg(ctx, args, exec.DeletePhrase)
		case "settings":
			err = exec.Settings(ctx)
		case "set":
			if len(args) < 2 {
				err = fmt.Errorf("usage: set <key> <value>")
			} else {
				err = exec.Set(ctx, args[0], strings.Join(args[1:], " "))
			}
		case "sources":
			err = exec.Sources(ctx)
		case "addsource":
			err = exec.AddSource(ctx)
		case "source":
			if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
				err = fmt.Errorf("usage: source <id> on|off")
			} else {
				err = exec.EnableSource(ctx, args[0], args[1] == "on")
			}
		case "import":
			err = withIDArg(ctx, args, exec.Import)
		case "sync":
			err = exec.Sync(ctx)
		case "status":
			err = exec.Status(ctx)
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}

		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func withIDArg(ctx context.Context, args []string, fn func(context.Context, string) error) error {
	if len(args) < 1 {
		return fmt.Errorf("missing argument")
	}
	return fn(ctx, args[0])
}
