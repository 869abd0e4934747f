package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// FormPrompter asks through huh forms.
type FormPrompter struct{}

// NewFormPrompter creates a terminal form prompter.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{}
}

// Select shows options as a select list.
func (p *FormPrompter) Select(ctx context.Context, title string, options []string) (int, error) {
	choice := 0
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(fmt.Sprintf("%d. %s", i+1, o), i)
	}

	err := p.run(ctx, huh.NewSelect[int]().
		Title(title).
		Options(opts...).
		Value(&choice))
	if err != nil {
		return 0, err
	}
	return choice, nil
}

// Input asks for a line of text.
func (p *FormPrompter) Input(ctx context.Context, title string, validate func(string) error) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}

	if err := p.run(ctx, input); err != nil {
		return "", err
	}
	return value, nil
}

// Password asks for a secret with masked echo.
func (p *FormPrompter) Password(ctx context.Context, title string) (string, error) {
	var value string
	err := p.run(ctx, huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value))
	if err != nil {
		return "", err
	}
	return value, nil
}

func (p *FormPrompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}
