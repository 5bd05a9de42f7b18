// Command inkwell is a terminal client for the Inkwell API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"inkwell/internal/client"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
	"inkwell/internal/view"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

const usage = `Usage: inkwell <command> [flags] [args]

Account:
  register -name NAME -email EMAIL -password PW
  login    -email EMAIL -password PW
  logout
  me
  profile  [-name NAME] [-bio BIO] [-avatar URL]
  users

Posts:
  posts
  post      <id>
  dashboard
  create    -title T -content C [-image URL] [-tags a,b]
  edit      <id> [-title T] [-content C] [-image URL] [-add-tag t]... [-remove-tag t]...
  delete    <id>
  like      <id>
  unlike    <id>
  toggle    <id>
  watch

Environment:
  INKWELL_API_URL       API base URL (default http://localhost:5000)
  INKWELL_SESSION_FILE  where the session is kept
`

type app struct {
	api   *client.Client
	store *store.Store
	pages *view.Pages
	r     *view.Renderer
}

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetDefault("INKWELL_API_URL", "http://localhost:5000")
	if path, err := session.DefaultPath(); err == nil {
		v.SetDefault("INKWELL_SESSION_FILE", path)
	}
	v.AutomaticEnv()

	if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(dir, "inkwell"))
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: config: %v\n", err)
		}
	}
	return v
}

func newApp(v *viper.Viper) (*app, error) {
	path := v.GetString("INKWELL_SESSION_FILE")
	if path == "" {
		return nil, errors.New("INKWELL_SESSION_FILE is not set and no user config directory was found")
	}
	sessions := session.NewFileStore(path)
	saved, err := sessions.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring saved session: %v\n", err)
		saved = nil
	}

	api, err := client.New(v.GetString("INKWELL_API_URL"), sessions)
	if err != nil {
		return nil, err
	}

	st := store.New(api, saved)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		st.Subscribe(spinner())
	}

	r := view.NewRenderer(os.Stdout)
	return &app{api: api, store: st, pages: view.NewPages(st, r), r: r}, nil
}

// spinner draws a one-line activity indicator on stderr while any action
// is pending.
func spinner() func(store.State) {
	frames := []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")
	var mu sync.Mutex
	i, shown := 0, false
	return func(s store.State) {
		mu.Lock()
		defer mu.Unlock()
		if s.AnyLoading() {
			fmt.Fprintf(os.Stderr, "\r%c working", frames[i%len(frames)])
			i++
			shown = true
			return
		}
		if shown {
			fmt.Fprint(os.Stderr, "\r\033[K")
			shown = false
		}
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help" {
		fmt.Print(usage)
		if len(os.Args) < 2 {
			os.Exit(2)
		}
		return
	}

	a, err := newApp(loadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "inkwell: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "inkwell: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)

	switch command {
	case "register":
		var f view.RegisterForm
		fs.StringVar(&f.Name, "name", "", "display name")
		fs.StringVar(&f.Email, "email", "", "email address")
		fs.StringVar(&f.Password, "password", "", "password")
		fs.StringVar(&f.Confirm, "confirm", "", "repeat the password (defaults to -password)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if f.Confirm == "" {
			f.Confirm = f.Password
		}
		return a.pages.Register(ctx, f)

	case "login":
		var f view.LoginForm
		fs.StringVar(&f.Email, "email", "", "email address")
		fs.StringVar(&f.Password, "password", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return a.pages.Login(ctx, f)

	case "logout":
		return a.pages.Logout(ctx)

	case "me":
		return a.pages.Profile(ctx)

	case "profile":
		var f view.ProfileForm
		fs.StringVar(&f.Name, "name", "", "new display name")
		fs.StringVar(&f.Bio, "bio", "", "new bio")
		fs.StringVar(&f.Avatar, "avatar", "", "new avatar URL")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if f == (view.ProfileForm{}) {
			return a.pages.Profile(ctx)
		}
		return a.pages.EditProfile(ctx, f)

	case "users":
		users, err := a.api.ListUsers(ctx)
		if err != nil {
			return err
		}
		a.r.Users(users)
		return nil

	case "posts":
		return a.pages.Home(ctx)

	case "dashboard":
		return a.pages.Dashboard(ctx)

	case "post", "delete", "like", "unlike", "toggle":
		id, err := postID(fs, args)
		if err != nil {
			return err
		}
		switch command {
		case "post":
			return a.pages.Post(ctx, id)
		case "delete":
			return a.pages.DeletePost(ctx, id)
		case "like":
			return a.pages.Like(ctx, id)
		case "unlike":
			return a.pages.Unlike(ctx, id)
		default:
			return a.pages.ToggleLike(ctx, id)
		}

	case "create":
		var f view.PostForm
		var tags string
		fs.StringVar(&f.Title, "title", "", "post title")
		fs.StringVar(&f.Content, "content", "", "post body")
		fs.StringVar(&f.Image, "image", "", "image URL")
		fs.StringVar(&tags, "tags", "", "comma separated tags")
		if err := fs.Parse(args); err != nil {
			return err
		}
		for _, t := range strings.Split(tags, ",") {
			f.AddTag(t)
		}
		return a.pages.CreatePost(ctx, f)

	case "edit":
		return a.edit(ctx, fs, args)

	case "watch":
		return a.watch(ctx)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func postID(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("usage: inkwell %s <id>", fs.Name())
	}
	return fs.Arg(0), nil
}

func (a *app) edit(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return errors.New("usage: inkwell edit <id> [flags]")
	}
	id := args[0]

	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new body")
	image := fs.String("image", "", "new image URL (empty string clears it)")
	var add, remove []string
	fs.Func("add-tag", "tag to add (repeatable)", func(s string) error { add = append(add, s); return nil })
	fs.Func("remove-tag", "tag to remove (repeatable)", func(s string) error { remove = append(remove, s); return nil })
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	return a.pages.EditPost(ctx, id, func(f *view.PostForm) {
		if set["title"] {
			f.Title = *title
		}
		if set["content"] {
			f.Content = *content
		}
		if set["image"] {
			f.Image = *image
		}
		for _, t := range remove {
			f.RemoveTag(t)
		}
		for _, t := range add {
			f.AddTag(t)
		}
	})
}

// watch prints live feed events until interrupted.
func (a *app) watch(ctx context.Context) error {
	if err := a.pages.Home(ctx); err != nil {
		return err
	}
	fmt.Println("\nWatching for new activity. Press Ctrl+C to stop.")
	return a.api.Watch(ctx, func(ev models.FeedEvent) {
		a.store.ApplyFeedEvent(ev)
		a.r.FeedEvent(ev, a.store.State())
	})
}
