package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/heimsharon/booksearch/pkg/bookclient"
	"github.com/heimsharon/booksearch/pkg/session"
)

const usage = `usage: booksearch-cli <command> [flags]

commands:
  register   -username -email -password
  login      -email -password
  logout
  whoami
  search     -q [-page] [-size]
  save       -id -title [-authors] [-description] [-image] [-link]
  list
  remove     -id
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	baseURL := os.Getenv("BOOKSEARCH_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}

	dir, err := session.DefaultStorageDir()
	if err != nil {
		log.Fatalf("resolve config dir: %v", err)
	}
	storage, err := session.NewFileStorage(dir)
	if err != nil {
		log.Fatalf("open session storage: %v", err)
	}

	sess := session.NewStore(storage)
	client := bookclient.NewClient(baseURL, sess)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx, client, sess, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, client *bookclient.Client, sess *session.Store, cmd string, args []string) error {
	switch cmd {
	case "register":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		fs.Parse(args)

		creds, err := client.Register(ctx, *username, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("registered and logged in as %s\n", creds.User.Username)
		return nil

	case "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		fs.Parse(args)

		creds, err := client.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", creds.User.Username)
		return nil

	case "logout":
		if err := client.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "whoami":
		if !sess.LoggedIn() {
			fmt.Println("not logged in")
			return nil
		}
		profile, err := sess.Profile()
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", profile.Username, profile.Email)
		return nil

	case "search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "search query")
		page := fs.Int("page", 1, "result page")
		size := fs.Int("size", 10, "page size")
		fs.Parse(args)

		result, err := client.Search(ctx, *q, *page, *size)
		if err != nil {
			return err
		}
		fmt.Printf("%d results\n", result.Total)
		for _, b := range result.Books {
			fmt.Printf("  %s  %s - %s\n", b.BookID, b.Title, strings.Join(b.Authors, ", "))
		}
		return nil

	case "save":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "catalog book id")
		title := fs.String("title", "", "title")
		authors := fs.String("authors", "", "comma separated authors")
		description := fs.String("description", "", "description")
		image := fs.String("image", "", "cover image url")
		link := fs.String("link", "", "catalog link")
		fs.Parse(args)

		book := bookclient.Book{
			BookID:      *id,
			Title:       *title,
			Description: *description,
			Image:       *image,
			Link:        *link,
		}
		if *authors != "" {
			book.Authors = strings.Split(*authors, ",")
		}

		saved, err := client.SaveBook(ctx, book)
		if err != nil {
			return err
		}
		fmt.Printf("saved %q\n", saved.Title)
		return nil

	case "list":
		books, err := client.ListSaved(ctx)
		if err != nil {
			return err
		}
		for _, b := range books {
			fmt.Printf("  %s  %s - %s\n", b.BookID, b.Title, strings.Join(b.Authors, ", "))
		}
		return nil

	case "remove":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "catalog book id")
		fs.Parse(args)

		remaining, err := client.RemoveBook(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("removed, %d saved books left\n", len(remaining))
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
