// Package main runs the interactive Apartey client shell: sign in or up,
// inspect the session, switch marketplace country, and walk the review flow
// including the sign-in detour.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apartey/apartey-client/internal/api"
	"github.com/apartey/apartey-client/internal/auth"
	"github.com/apartey/apartey-client/internal/config"
	"github.com/apartey/apartey-client/internal/geoip"
	"github.com/apartey/apartey-client/internal/location"
	"github.com/apartey/apartey-client/internal/logger"
	"github.com/apartey/apartey-client/internal/review"
	"github.com/apartey/apartey-client/internal/session"
	"github.com/apartey/apartey-client/internal/storage"
)

var (
	version   string
	buildDate string
)

// page tracks the "current page" of the shell so navigations are visible.
type page struct {
	current string
}

func (p *page) Navigate(path string) {
	p.current = path
	fmt.Printf("→ %s\n", path)
}

// repl runs the interactive loop.
func repl(
	client *api.Client,
	sess *session.Store,
	orch *auth.Orchestrator,
	resolver *location.Resolver,
	pg *page,
) {
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("apartey> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, signup <email> <password> [role], signin <email> <password>, whoami, country [code], review, pending, submit, logout, exit")
		case "signup":
			if len(args) < 3 {
				fmt.Println("Usage: signup <email> <password> [role]")
				continue
			}
			role := "renter"
			if len(args) > 3 {
				role = args[3]
			}
			sess.SetAuthMode(session.AuthModeSignup)
			if err := client.SignUp(ctx, args[1], args[2], role); err != nil {
				fmt.Println("Sign-up failed:", err)
				continue
			}
			orch.HandlePostLoginRedirect(ctx)
		case "signin":
			if len(args) < 3 {
				fmt.Println("Usage: signin <email> <password>")
				continue
			}
			sess.SetAuthMode(session.AuthModeSignin)
			if err := client.SignIn(ctx, args[1], args[2]); err != nil {
				fmt.Println("Sign-in failed:", err)
				continue
			}
			orch.HandlePostLoginRedirect(ctx)
		case "whoami":
			if !orch.CheckAuthentication() {
				fmt.Println("Not signed in")
				continue
			}
			u, err := client.CurrentUser(ctx)
			if err != nil {
				fmt.Println("Profile fetch failed:", err)
				continue
			}
			fmt.Printf("Email: %s\nRole: %s\nOnboarded: %v\n", u.Email, u.Role, u.IsOnboarded)
		case "country":
			if len(args) < 2 {
				fmt.Printf("Country: %s\n", resolver.SelectedCountryCode())
				if loc := resolver.Location(); loc != nil {
					fmt.Printf("Location: %s (%s)\n", loc.CountryName, loc.CountryCode)
				}
				continue
			}
			resolver.Select(ctx, args[1])
			fmt.Printf("Country set to %s\n", resolver.SelectedCountryCode())
		case "review":
			draft := promptForDraft(scanner)
			if !orch.CheckAuthentication() {
				fmt.Println("Sign-in required; your draft is saved.")
				orch.HandleAuthRedirect(draft, pg.current)
				continue
			}
			if err := orch.SubmitPendingReview(ctx, draft, client.SubmitReview); err != nil {
				fmt.Println("Submission failed:", err)
				continue
			}
			fmt.Println("Review submitted")
		case "pending":
			d, ok := orch.PendingReview()
			if !ok {
				fmt.Println("No pending review")
				continue
			}
			fmt.Printf("Pending review %s (anonymous: %v)\n", d.ID, d.SubmitAnonymously)
		case "submit":
			d, ok := orch.PendingReview()
			if !ok {
				fmt.Println("No pending review")
				continue
			}
			if err := orch.SubmitPendingReview(ctx, d, client.SubmitReview); err != nil {
				fmt.Println("Submission failed:", err)
				continue
			}
			fmt.Println("Pending review submitted")
		case "logout":
			sess.ClearAllTokens()
			pg.Navigate(auth.RouteSignin)
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// promptForDraft collects a minimal review draft from the shell.
func promptForDraft(scanner *bufio.Scanner) review.Draft {
	fmt.Print("Overall rating (1-5): ")
	scanner.Scan()
	rating := strings.TrimSpace(scanner.Text())

	fmt.Print("City: ")
	scanner.Scan()
	city := strings.TrimSpace(scanner.Text())

	fmt.Print("Submit anonymously? (y/N): ")
	scanner.Scan()
	anon := strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")

	return review.Draft{
		Ratings:           map[string]any{"overall": rating},
		Location:          map[string]any{"city": city},
		SubmitAnonymously: anon,
	}
}

func main() {
	options := config.Parse()

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Warn"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	fmt.Printf("Apartey Client\nVersion: %s\nBuild Date: %s\n",
		orDefault(version), orDefault(buildDate))

	kv := storage.NewFileStore(options.StoragePath, zapLogger)
	storage.StartAutoReload(context.Background(), kv, 5*time.Second)
	sess := session.New(kv)

	pg := &page{current: auth.RouteHome}

	client := api.New(options.APIBaseURL, sess, zapLogger,
		api.WithUnauthorizedHook(func() {
			fmt.Println("Session expired, please sign in again.")
			pg.Navigate(auth.RouteSignin)
		}))

	orch := auth.NewOrchestrator(kv, pg, zapLogger, auth.WithBackend(client))
	defer orch.Close()

	geo := geoip.NewClient(nil, nil, zapLogger)
	resolver := location.NewResolver(kv, geo, zapLogger)
	go resolver.Init(context.Background())

	repl(client, sess, orch, resolver, pg)
}

func orDefault(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
