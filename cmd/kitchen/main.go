package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"go-restaurant-ordering/board"
	"go-restaurant-ordering/config"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"

	"github.com/shopspring/decimal"
)

func main() {
	logger := log.New(os.Stderr, "[kitchen] ", log.LstdFlags)
	config.LoadEnv(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatalf("kitchen board stopped with error: %v", err)
	}
}

type flags struct {
	server   string
	email    string
	password string
	token    string
	timezone string
	refetch  bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("kitchen", flag.ContinueOnError)
	fs.StringVar(&f.server, "server", envOr("KITCHEN_SERVER", "http://localhost:8000"), "order service base URL")
	fs.StringVar(&f.email, "email", os.Getenv("KITCHEN_EMAIL"), "staff email")
	fs.StringVar(&f.password, "password", os.Getenv("KITCHEN_PASSWORD"), "staff password")
	fs.StringVar(&f.token, "token", os.Getenv("KITCHEN_TOKEN"), "staff token, instead of email and password")
	fs.StringVar(&f.timezone, "tz", envOr("TIMEZONE", "Europe/Amsterdam"), "kitchen time zone")
	fs.BoolVar(&f.refetch, "refetch", true, "reload the day after every move")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.token == "" && (f.email == "" || f.password == "") {
		return f, errors.New("either -token or -email and -password are required")
	}
	return f, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, logger *log.Logger) error {
	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	loc, err := time.LoadLocation(f.timezone)
	if err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	if loc == time.Local {
		return errors.New("-tz must name a zone, e.g. Europe/Amsterdam")
	}

	client := board.NewClient(f.server, f.token)
	if f.token == "" {
		if err := client.Login(ctx, f.email, f.password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	sh := newShell(in, out)
	b := board.New(client, board.Options{
		Location: loc,
		Logger:   logger,
		Refetch:  f.refetch,
		OnError: func(orderID string, err error) {
			sh.printf("! order %s kon niet worden verplaatst: %v\n", orderID, err)
		},
	})
	sh.board = b
	if err := b.Load(ctx); err != nil {
		return fmt.Errorf("loading orders: %w", err)
	}

	go func() {
		for ctx.Err() == nil {
			err := client.Subscribe(ctx, func(event models.BoardEvent) {
				b.ApplyEvent(event)
				if event.Event == models.EventNewOrder {
					sh.printf("* nieuwe order %s\n", event.Payload.OrderID)
				}
			})
			if ctx.Err() != nil {
				return
			}
			logger.Printf("event stream lost: %v, reconnecting", err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
		}
	}()

	sh.render()
	return sh.loop(ctx)
}

// shell reads operator commands line by line.
type shell struct {
	board *board.Board
	lines *bufio.Scanner

	mu  sync.Mutex
	out io.Writer
}

func newShell(in io.Reader, out io.Writer) *shell {
	return &shell{lines: bufio.NewScanner(in), out: out}
}

func (s *shell) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *shell) loop(ctx context.Context) error {
	for {
		s.printf("> ")
		if !s.lines.Scan() {
			s.board.Wait()
			return s.lines.Err()
		}
		quit, err := s.exec(ctx, s.lines.Text())
		if err != nil {
			s.printf("! %v\n", err)
		}
		if quit || ctx.Err() != nil {
			s.board.Wait()
			return nil
		}
	}
}

const usage = `commands:
  show                      redraw the board
  move <order> <status>     open, kitchen, delivered or cancelled
  delay <order>             add 10 minutes to the promised time
  cancel <order>            cancel after confirmation
  date <YYYY-MM-DD|today>   switch day
  quit
`

func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		s.printf("%s", usage)
	case "show":
		s.render()
	case "move":
		if len(args) != 2 {
			return false, errors.New("usage: move <order> <status>")
		}
		if err := s.board.Move(ctx, args[0], models.OrderStatus(strings.ToLower(args[1]))); err != nil {
			return false, err
		}
		s.render()
	case "delay":
		if len(args) != 1 {
			return false, errors.New("usage: delay <order>")
		}
		order, err := s.board.DelayDelivery(ctx, args[0])
		if err != nil {
			return false, err
		}
		s.printf("%s nu om %s\n", order.OrderID, order.DeliveryDeadline().In(s.board.Day().Location()).Format("15:04"))
	case "cancel":
		if len(args) != 1 {
			return false, errors.New("usage: cancel <order>")
		}
		done, err := s.board.Cancel(ctx, args[0], s.confirm)
		if err != nil {
			return false, err
		}
		if done {
			s.render()
		}
	case "date":
		if len(args) != 1 {
			return false, errors.New("usage: date <YYYY-MM-DD|today>")
		}
		loc := s.board.Day().Location()
		day := time.Now().In(loc)
		if args[0] != "today" {
			parsed, err := time.ParseInLocation("2006-01-02", args[0], loc)
			if err != nil {
				return false, fmt.Errorf("invalid date %q", args[0])
			}
			day = parsed
		}
		if err := s.board.SelectDate(ctx, day); err != nil {
			return false, err
		}
		s.render()
	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

func (s *shell) confirm(prompt string) bool {
	s.printf("%s [j/N] ", prompt)
	if !s.lines.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.lines.Text()))
	return answer == "j" || answer == "ja" || answer == "y" || answer == "yes"
}

func (s *shell) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := s.board.Day().Location()
	fmt.Fprintf(s.out, "\n%s\n", s.board.Day().Format("Monday 2 January 2006"))
	for _, col := range s.board.Columns() {
		fmt.Fprintf(s.out, "== %s (%d) ==\n", col.Title, len(col.Cards))
		for _, card := range col.Cards {
			o := card.Order
			fmt.Fprintf(s.out, "  %-10s %s  %-9s %2d st  %10s  %s\n",
				o.OrderID,
				card.Deadline.In(loc).Format("15:04"),
				card.Urgency,
				card.TotalItems,
				helpers.FormatEuro(decimal.NewFromFloat(o.OrderTotal)),
				o.CustomerName,
			)
		}
	}
}
