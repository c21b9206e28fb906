package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/mindroll/internal/client"
	"github.com/mcoot/mindroll/internal/model"
)

const prompt = "mindroll> "

var errNoRoom = errors.New("no current room: use 'join <room>' or 'reconnect <room>'")

func newPlayCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play interactively over a single connection",
		Long: `play opens one connection to the server and reads commands from stdin.
Closing the prompt drops the connection, which the server treats as a
disconnect: use 'reconnect <room>' within the reconnection window to return.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := cfg.LoadSession()
			if err != nil {
				return err
			}

			c, err := dial(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			c.SetToken(session.Token)

			p := &player{
				cfg:      cfg,
				client:   c,
				username: session.Username,
				out:      NewOutput(cmd.OutOrStdout(), cfg.Output),
			}
			return p.run(cmd.Context(), bufio.NewScanner(cmd.InOrStdin()))
		},
	}
}

// player is the state of one interactive play session
type player struct {
	cfg      *Config
	client   *client.Client
	username string
	room     model.RoomID
	out      *Output
}

func (p *player) run(ctx context.Context, lines *bufio.Scanner) error {
	interactive := p.cfg.Output != "json"
	if interactive {
		_, _ = p.out.titleColor.Fprintf(p.out.w, "Connected to %s as %s. Type 'help' for commands.\n", p.cfg.ServerAddr, p.username)
	}

	for {
		if interactive {
			_, _ = fmt.Fprint(p.out.w, prompt)
		}
		if !lines.Scan() {
			return lines.Err()
		}

		fields := strings.Fields(lines.Text())
		if len(fields) == 0 {
			continue
		}

		quit, err := p.exec(ctx, fields[0], fields[1:])
		if quit {
			return nil
		}
		if err != nil {
			// only server-side refusals leave the connection usable
			if !client.IsRemote(err) && !isUsage(err) {
				return err
			}
			p.out.PrintError(err)
		}
	}
}

// usageError is a command line the prompt could not make sense of
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func isUsage(err error) bool {
	var ue *usageError
	return errors.As(err, &ue) || errors.Is(err, errNoRoom)
}

func usage(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func (p *player) exec(parent context.Context, name string, args []string) (quit bool, err error) {
	ctx, cancel := context.WithTimeout(parent, p.cfg.Timeout)
	defer cancel()

	switch name {
	case "quit", "exit":
		return true, nil

	case "help":
		p.out.PrintMessage(helpText)

	case "create":
		if len(args) != 1 {
			return false, usage("usage: create <room>")
		}
		msg, err := p.client.CreateRoom(ctx, args[0])
		if err != nil {
			return false, err
		}
		p.out.PrintMessage(msg)

	case "join":
		if len(args) != 1 {
			return false, usage("usage: join <room>")
		}
		msg, err := p.client.JoinRoom(ctx, args[0], p.username)
		if err != nil {
			return false, err
		}
		p.room = model.RoomID(args[0])
		p.out.PrintMessage(msg)

	case "call":
		if len(args) != 1 {
			return false, usage("usage: call <number>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, usage("not a number: %s", args[0])
		}
		if p.room == "" {
			return false, errNoRoom
		}
		msg, err := p.client.CallNumber(ctx, string(p.room), p.username, n)
		if err != nil {
			return false, err
		}
		p.out.PrintMessage(msg)

	case "reveal":
		if p.room == "" {
			return false, errNoRoom
		}
		res, err := p.client.RevealResult(ctx, string(p.room), p.username)
		if err != nil {
			return false, err
		}
		p.out.PrintReveal(res)

	case "state":
		room := string(p.room)
		if len(args) > 0 {
			room = args[0]
		}
		if room == "" {
			return false, errNoRoom
		}
		snap, err := p.client.GetGameState(ctx, room)
		if err != nil {
			return false, err
		}
		p.out.PrintState(snap, p.username)

	case "leave":
		if p.room == "" {
			return false, errNoRoom
		}
		msg, err := p.client.LeaveRoom(ctx, string(p.room), p.username)
		if err != nil {
			return false, err
		}
		p.room = ""
		p.out.PrintMessage(msg)

	case "reconnect":
		if len(args) != 1 {
			return false, usage("usage: reconnect <room>")
		}
		msg, err := p.client.Reconnect(ctx, args[0], p.username)
		if err != nil {
			return false, err
		}
		p.room = model.RoomID(args[0])
		p.out.PrintMessage(msg)

	case "list":
		rooms, err := p.client.ListRooms(ctx)
		if err != nil {
			return false, err
		}
		p.out.Print(rooms)

	default:
		return false, usage("unknown command %q (try 'help')", name)
	}
	return false, nil
}
