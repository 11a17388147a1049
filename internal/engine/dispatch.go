package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

// Reply is the outcome of a dispatched command, ready for a transport to render.
type Reply struct {
	Command string
	Text    string
	// IDsChanged is set when card ids in Deck were renumbered by the command.
	IDsChanged bool
	Deck       string
	File       *File
	Err        *apperrors.Error
}

// usage lists the operands of each subcommand.
var usage = map[string]string{
	"list":        "list",
	"create":      "create <deck>",
	"remove-deck": "remove-deck <deck>",
	"stats":       "stats <deck>",
	"add":         "add <deck> <type> <text...>",
	"replace":     "replace <deck> <id> <type> <text...>",
	"search":      "search <deck> <query...>",
	"delete":      "delete <deck> <id>",
	"download":    "download <deck>",
	"export":      "export <deck>",
	"show":        "show <deck> <id>",
}

var commandOrder = []string{
	"list", "create", "remove-deck", "stats", "add", "replace",
	"search", "delete", "download", "export", "show",
}

// Usage returns the syntax reminder for cmd, or for all commands when cmd is unknown.
func (e *Engine) Usage(cmd string) string {
	if u, ok := usage[cmd]; ok {
		return fmt.Sprintf("Syntax: `%s %s`", e.prefix, u)
	}
	return fmt.Sprintf("Syntax: `%s <%s>`", e.prefix, strings.Join(commandOrder, "|"))
}

// Dispatch runs the command in args, where args[0] is the subcommand and the
// rest are its whitespace separated operands. Malformed input yields a SYNTAX
// error carrying the usage line.
func (e *Engine) Dispatch(ctx context.Context, caller string, args []string) Reply {
	if len(args) == 0 {
		return e.fail("", apperrors.New(apperrors.CodeSyntax, e.Usage("")))
	}

	cmd := strings.ToLower(args[0])
	reply := e.dispatch(ctx, caller, cmd, args[1:])
	reply.Command = cmd

	var code apperrors.Code
	if reply.Err != nil {
		code = reply.Err.Code
	}
	e.log.Debug("Command handled",
		zap.String("caller", caller),
		zap.String("command", cmd),
		zap.String("deck", reply.Deck),
		zap.String("code", string(code)))
	return reply
}

func (e *Engine) dispatch(ctx context.Context, caller, cmd string, ops []string) Reply {
	if _, ok := usage[cmd]; !ok {
		return e.fail(cmd, apperrors.WithMetadata(apperrors.CodeUnknownCommand,
			fmt.Sprintf("Unknown command %q. %s", cmd, e.Usage("")),
			map[string]string{"command": cmd}))
	}

	if cmd == "list" {
		if len(ops) != 0 {
			return e.syntax(cmd)
		}
		return e.replyList(ctx, caller)
	}

	if len(ops) == 0 {
		return e.syntax(cmd)
	}
	name := strings.ToLower(ops[0])
	rest := ops[1:]

	switch cmd {
	case "create":
		if len(rest) != 0 {
			return e.syntax(cmd)
		}
		if err := e.Create(ctx, caller, name); err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: "Deck created."}

	case "remove-deck":
		if len(rest) != 0 {
			return e.syntax(cmd)
		}
		if err := e.RemoveDeck(ctx, caller, name, false); err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: "Deck removed."}

	case "stats":
		if len(rest) != 0 {
			return e.syntax(cmd)
		}
		res, err := e.Stats(ctx, caller, name)
		if err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: FormatStats(res)}

	case "add":
		if len(rest) < 2 {
			return e.syntax(cmd)
		}
		res, err := e.Add(ctx, caller, name, rest[0], strings.Join(rest[1:], " "))
		if err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: fmt.Sprintf("Card added with id %d.", res.ID)}

	case "replace":
		if len(rest) < 3 {
			return e.syntax(cmd)
		}
		id, err := e.parseID(cmd, rest[0])
		if err != nil {
			return e.fail(name, err)
		}
		res, err := e.Replace(ctx, caller, name, id, rest[1], strings.Join(rest[2:], " "))
		if err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: FormatReplace(res), IDsChanged: res.IDsChanged}

	case "search":
		if len(rest) == 0 {
			return e.syntax(cmd)
		}
		res, err := e.Search(ctx, caller, name, strings.Join(rest, " "))
		if err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: FormatSearch(res)}

	case "delete":
		if len(rest) != 1 {
			return e.syntax(cmd)
		}
		id, err := e.parseID(cmd, rest[0])
		if err != nil {
			return e.fail(name, err)
		}
		res, err := e.Delete(ctx, caller, name, id)
		if err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: fmt.Sprintf("Card %d deleted: %s", res.ID, res.Removed), IDsChanged: res.IDsChanged}

	case "download", "export":
		if len(rest) != 0 {
			return e.syntax(cmd)
		}
		var f File
		var err error
		if cmd == "download" {
			f, err = e.Download(ctx, caller, name)
		} else {
			f, err = e.Export(ctx, caller, name)
		}
		if err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: fmt.Sprintf("Here is the deck `%s`.", name), File: &f}

	case "show":
		if len(rest) != 1 {
			return e.syntax(cmd)
		}
		id, err := e.parseID(cmd, rest[0])
		if err != nil {
			return e.fail(name, err)
		}
		c, err := e.Card(ctx, caller, name, id)
		if err != nil {
			return e.fail(name, err)
		}
		return Reply{Deck: name, Text: fmt.Sprintf("`%d` %s", id, c)}
	}

	return e.syntax(cmd)
}

func (e *Engine) replyList(ctx context.Context, caller string) Reply {
	names := e.List(ctx, caller)
	if len(names) == 0 {
		return Reply{Text: "Currently 0 decks."}
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return Reply{Text: fmt.Sprintf("Currently %d deck(s): %s", len(names), strings.Join(quoted, ", "))}
}

func (e *Engine) parseID(cmd, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeSyntax,
			fmt.Sprintf("%q is not a card id. %s", s, e.Usage(cmd)),
			map[string]string{"command": cmd})
	}
	return id, nil
}

func (e *Engine) syntax(cmd string) Reply {
	return e.fail("", apperrors.WithMetadata(apperrors.CodeSyntax, e.Usage(cmd),
		map[string]string{"command": cmd}))
}

// fail converts err into a reply. Errors that are not domain errors are
// reported without their details.
func (e *Engine) fail(name string, err error) Reply {
	appErr := apperrors.As(err)
	if appErr == nil {
		e.log.Error("Unexpected command failure", zap.String("deck", name), zap.Error(err))
		appErr = apperrors.Wrap(apperrors.CodeUnknown, "Something went wrong.", err)
	}
	if appErr.Code == apperrors.CodePersistenceFailed {
		e.log.Error("Command not saved", zap.String("deck", name), zap.Error(err))
	}
	return Reply{Deck: name, Err: appErr}
}

// FormatStats renders deck counts on one line.
func FormatStats(res StatsResult) string {
	s := res.Stats
	return fmt.Sprintf("%d cards total (%d statements, %d objects, %d verbs), Public: %t",
		s.Total, s.Statement, s.Object, s.Verb, res.Public)
}

// FormatReplace describes where the new and moved cards ended up.
func FormatReplace(res ReplaceResult) string {
	msg := fmt.Sprintf("Card replaced, the new card has id %d.", res.ID)
	if res.Moved {
		msg += fmt.Sprintf(" Card %d moved to id %d.", res.MovedFrom, res.MovedTo)
	}
	return msg
}

// FormatSearch lists matches with their ids.
func FormatSearch(res SearchResult) string {
	if res.Total == 0 {
		return "No results."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d result(s)", res.Total)
	if res.Truncated() {
		fmt.Fprintf(&b, ", showing the first %d", len(res.Matches))
	}
	b.WriteString(":")
	for _, m := range res.Matches {
		fmt.Fprintf(&b, "\n`%d` %s", m.ID, m.Card)
	}
	return b.String()
}
