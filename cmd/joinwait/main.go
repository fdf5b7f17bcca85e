// Command joinwait verifies a join code, queues the child and waits until
// the live class starts, then prints the join URL on stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/parentpanel/gateway/internal/config"
	"github.com/parentpanel/gateway/internal/logger"
	"github.com/parentpanel/gateway/internal/parentpanel"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

func main() {
	code := flag.String("code", "", "6-letter/number join code from the class link")
	token := flag.String("token", "", "parent auth token (prompted for when unset)")
	flag.Parse()

	cfg := config.Load()
	log := logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if *code == "" && flag.NArg() > 0 {
		*code = flag.Arg(0)
	}
	*code = strings.TrimSpace(*code)
	if *code == "" {
		fmt.Fprintln(os.Stderr, "usage: joinwait -code <join code> [-token <token>]")
		os.Exit(2)
	}

	authToken, err := resolveToken(*token, cfg.DefaultAuthToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read auth token")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = parentpanel.WithToken(ctx, authToken)

	client := parentpanel.NewClient(cfg.ParentPanelAPIURL, cfg.UpstreamTimeout)
	clock := service.RealClock{}

	v := service.NewVerifyService(client, clock, cfg.ClassLocation, log).Verify(ctx, *code)
	if v.Status != service.VerifyOK {
		fmt.Fprintln(os.Stderr, v.Message)
		os.Exit(1)
	}
	className := ""
	if v.Class != nil {
		className = v.Class.ClassName
	}
	fmt.Fprintf(os.Stderr, "%s (%s) for %s\n", className, v.Subject, v.ChildName)
	if v.StartsIn != nil && *v.StartsIn > 0 {
		fmt.Fprintf(os.Stderr, "Class starts in %s\n", v.StartsIn.Round(time.Second))
	}

	joins := service.NewJoinService(client, clock, cfg.JoinFirstPollDelay, cfg.JoinPollInterval, log)
	page := joins.OpenPage(ctx, v.Code, func(url string) {
		fmt.Println(url)
	})
	defer page.Close()

	page.AutoJoin()
	state, err := page.JoinNow()
	if err != nil {
		fmt.Fprintln(os.Stderr, service.JoinMessage(err))
		os.Exit(1)
	}
	if state == service.JoinPolling {
		fmt.Fprintln(os.Stderr, service.MsgQueued)
	}

	select {
	case <-page.Guard().Done():
	case <-ctx.Done():
		log.Info().Msg("Stopped waiting for class")
		os.Exit(130)
	}
}

// resolveToken prefers the flag, then PARENT_PANEL_AUTH_TOKEN, then a
// silent prompt when stdin is a terminal. An empty token is allowed: the
// code checks do not need one.
func resolveToken(flagToken, envToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if envToken != "" {
		return envToken, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, "Auth token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
