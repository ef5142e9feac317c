package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aidaily-app/aidaily/internal/client/repositories/sources"
	"github.com/aidaily-app/aidaily/internal/models"
)

func (a *App) News(ctx context.Context, starredOnly bool) error {
	items, err := a.library.ListNews(ctx, starredOnly)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No news items.")
		return nil
	}
	for _, item := range items {
		mark := " "
		if item.Starred {
			mark = "*"
		}
		fmt.Printf("%s %s  %s (%s)\n", mark, item.ID, item.Title, item.Source)
	}
	return nil
}

func (a *App) Star(ctx context.Context, id string, starred bool) error {
	if err := a.library.SetStarred(ctx, id, starred); err != nil {
		return err
	}
	if starred {
		fmt.Println("Starred.")
	} else {
		fmt.Println("Unstarred.")
	}
	return nil
}

func (a *App) DeleteNews(ctx context.Context, id string) error {
	if err := a.library.DeleteNews(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (a *App) Concepts(ctx context.Context) error {
	concepts, err := a.library.ListConcepts(ctx)
	if err != nil {
		return err
	}
	if len(concepts) == 0 {
		fmt.Println("No concepts.")
		return nil
	}
	for _, c := range concepts {
		fmt.Printf("%s  %s: %s\n", c.ID, c.Term, c.Definition)
	}
	return nil
}

func (a *App) AddConcept(ctx context.Context) error {
	newsID, err := GetSimpleText(a.reader, "News item id (empty for none):", os.Stdout)
	if err != nil {
		return err
	}
	term, err := GetSimpleText(a.reader, "Term:", os.Stdout)
	if err != nil {
		return err
	}
	definition, err := GetSimpleText(a.reader, "Definition:", os.Stdout)
	if err != nil {
		return err
	}

	c, err := a.library.AddConcept(ctx, newsID, term, definition)
	if err != nil {
		return err
	}
	fmt.Printf("Added concept %s.\n", c.ID)
	return nil
}

func (a *App) DeleteConcept(ctx context.Context, id string) error {
	if err := a.library.DeleteConcept(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (a *App) Phrases(ctx context.Context) error {
	phrases, err := a.library.ListPhrases(ctx)
	if err != nil {
		return err
	}
	if len(phrases) == 0 {
		fmt.Println("No phrases.")
		return nil
	}
	for _, p := range phrases {
		fmt.Printf("%s  %q  %s\n", p.ID, p.Text, p.Note)
	}
	return nil
}

func (a *App) AddPhrase(ctx context.Context) error {
	newsID, err := GetSimpleText(a.reader, "News item id (empty for none):", os.Stdout)
	if err != nil {
		return err
	}
	text, err := GetSimpleText(a.reader, "Phrase:", os.Stdout)
	if err != nil {
		return err
	}
	note, err := GetSimpleText(a.reader, "Note:", os.Stdout)
	if err != nil {
		return err
	}

	p, err := a.library.AddPhrase(ctx, newsID, text, note)
	if err != nil {
		return err
	}
	fmt.Printf("Added phrase %s.\n", p.ID)
	return nil
}

func (a *App) DeletePhrase(ctx context.Context, id string) error {
	if err := a.library.DeletePhrase(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (a *App) Set(ctx context.Context, key, value string) error {
	if err := a.library.SetSetting(ctx, key, value); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func (a *App) Settings(ctx context.Context) error {
	settings, err := a.library.ListSettings(ctx)
	if err != nil {
		return err
	}
	for _, s := range settings {
		fmt.Printf("%s = %s\n", s.Key, s.Value)
	}
	return nil
}

func (a *App) Sources(ctx context.Context) error {
	list, err := a.sources.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No sources configured.")
		return nil
	}
	for _, s := range list {
		state := "disabled"
		if s.Enabled {
			state = "enabled"
		}
		fmt.Printf("%s  %s  %s  [%s]\n", s.ID, s.Name, s.RSSURL, state)
	}
	return nil
}

func (a *App) AddSource(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name:", os.Stdout)
	if err != nil {
		return err
	}
	rssURL, err := GetSimpleText(a.reader, "RSS URL:", os.Stdout)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Category:", os.Stdout)
	if err != nil {
		return err
	}

	s := &sources.Source{
		ID:       models.NewID(),
		Name:     name,
		RSSURL:   rssURL,
		Category: category,
		Enabled:  true,
	}
	if err := a.sources.Add(ctx, s); err != nil {
		return err
	}
	fmt.Printf("Added source %s.\n", s.ID)
	return nil
}

func (a *App) EnableSource(ctx context.Context, id string, enabled bool) error {
	if err := a.sources.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	if enabled {
		fmt.Println("Source enabled.")
	} else {
		fmt.Println("Source disabled.")
	}
	return nil
}
