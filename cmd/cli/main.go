// Command stockpilot is a CLI client for the stockpilot inventory backend.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rkohli/stockpilot/internal/api"
	"github.com/rkohli/stockpilot/internal/authz"
	"github.com/rkohli/stockpilot/internal/catalog"
	"github.com/rkohli/stockpilot/internal/config"
	"github.com/rkohli/stockpilot/internal/model"
	"github.com/rkohli/stockpilot/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app wires the client components for one invocation.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	tokens *session.TokenFile
	client *api.Client
	store  *session.Store
	cache  *catalog.Cache
}

func newApp(addr string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.BaseURL = addr
	}

	logger := zap.NewNop()
	if cfg.Debug {
		logger, err = zap.NewProduction()
		if err != nil {
			return nil, err
		}
	}

	tokens, err := session.NewTokenFile(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, tokens: tokens}
	a.client = api.New(cfg.BaseURL, tokens,
		api.WithHTTPClient(httpClient(cfg.RequestTimeout)),
		api.WithUploadClient(httpClient(cfg.UploadTimeout)),
		api.WithAuthErrorHook(func() { a.store.Invalidate() }),
		api.WithLogger(logger),
	)
	a.store = session.NewStore(a.client, tokens, logger)
	a.cache = catalog.New(a.client)
	return a, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// requireAction resolves the session and checks the role gate before a
// mutation command touches the network.
func (a *app) requireAction(ctx context.Context, action authz.Action) (model.Session, error) {
	a.store.Resolve(ctx)
	sess := a.store.Session()
	if !sess.IsAuthenticated {
		return sess, fmt.Errorf("not logged in (run: stockpilot login)")
	}
	if err := authz.Require(sess.User.Role, action); err != nil {
		return sess, err
	}
	return sess, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `stockpilot CLI
Usage:
  stockpilot [-addr URL] <cmd> [args]

Commands:
  version
  login         -u <username> -p <password>        (saves token)
  logout
  whoami
  categories    [-add <name>]
  brands        [-add <name>]
  subcategories -category <id> [-add <name>]
  products      [-q <search>]
  product-add   -item-id ID -name NAME -variant size=9,... [flags]
  product-edit  -id <id> [flags]
  product-rm    -id <id> [-yes]
  users
  user-add      -u <username> -email <email> -p <password> -role <role>
  user-edit     -id <id> [-email E] [-role R] [-active true|false]
  user-rm       -id <id> [-yes]
`)
	os.Exit(2)
}

// main dispatches subcommands against the configured backend.
func main() {
	addr := flag.String("addr", "", "backend base URL (overrides STOCKPILOT_ADDR)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("stockpilot %s (%s)\n", version, buildDate)
		return
	}

	a, err := newApp(*addr)
	if err != nil {
		fail(err)
	}
	defer a.close()

	ctx, cancel := withTimeout()
	defer cancel()

	switch cmd {

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		user, err := a.store.Login(ctx, *u, *p)
		if err != nil {
			fail(err)
		}
		fmt.Printf("logged in as %s (%s)\n", user.Username, user.Role)

	case "logout":
		a.store.Logout()
		fmt.Println("ok")

	case "whoami":
		a.store.Resolve(ctx)
		sess := a.store.Session()
		if !sess.IsAuthenticated {
			fmt.Println("not logged in")
			os.Exit(1)
		}
		printJSON(sess.User)

	case "categories":
		cmdCategories(ctx, a, args)

	case "brands":
		cmdBrands(ctx, a, args)

	case "subcategories":
		cmdSubcategories(ctx, a, args)

	case "products":
		cmdProducts(ctx, a, args)

	case "product-add":
		cmdProductAdd(ctx, a, args)

	case "product-edit":
		cmdProductEdit(ctx, a, args)

	case "product-rm":
		cmdProductRemove(ctx, a, args)

	case "users":
		if _, err := a.requireAction(ctx, authz.ActionManageUsers); err != nil {
			fail(err)
		}
		users, err := a.client.Users(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(users)

	case "user-add":
		cmdUserAdd(ctx, a, args)

	case "user-edit":
		cmdUserEdit(ctx, a, args)

	case "user-rm":
		fs := flag.NewFlagSet("user-rm", flag.ExitOnError)
		id := fs.Int("id", 0, "user id")
		yes := fs.Bool("yes", false, "skip confirmation")
		_ = fs.Parse(args)
		if *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		if _, err := a.requireAction(ctx, authz.ActionManageUsers); err != nil {
			fail(err)
		}
		if !*yes && !confirm(fmt.Sprintf("delete user %d?", *id)) {
			fmt.Println("aborted")
			return
		}
		if err := a.client.DeleteUser(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	default:
		usage()
	}
}

func cmdCategories(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	add := fs.String("add", "", "create a category with this name")
	_ = fs.Parse(args)

	if *add != "" {
		if _, err := a.requireAction(ctx, authz.ActionManageCatalog); err != nil {
			fail(err)
		}
		id, err := a.cache.CreateCategory(ctx, *add)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)
		return
	}
	if err := a.cache.LoadCategories(ctx); err != nil {
		fail(err)
	}
	printJSON(a.cache.Categories())
}

func cmdBrands(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("brands", flag.ExitOnError)
	add := fs.String("add", "", "create a brand with this name")
	_ = fs.Parse(args)

	if *add != "" {
		if _, err := a.requireAction(ctx, authz.ActionManageCatalog); err != nil {
			fail(err)
		}
		id, err := a.cache.CreateBrand(ctx, *add)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)
		return
	}
	if err := a.cache.LoadBrands(ctx); err != nil {
		fail(err)
	}
	printJSON(a.cache.Brands())
}

func cmdSubcategories(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("subcategories", flag.ExitOnError)
	category := fs.Int("category", 0, "parent category id")
	add := fs.String("add", "", "create a subcategory with this name")
	_ = fs.Parse(args)

	if *add != "" {
		if _, err := a.requireAction(ctx, authz.ActionManageCatalog); err != nil {
			fail(err)
		}
		id, err := a.cache.CreateSubcategory(ctx, *add, *category)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)
		return
	}
	if err := a.cache.LoadSubcategories(ctx, *category); err != nil {
		fail(err)
	}
	printJSON(a.cache.Subcategories())
}

func cmdUserAdd(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("user-add", flag.ExitOnError)
	u := fs.String("u", "", "username")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password")
	role := fs.String("role", string(model.RoleEmployee), "role (admin/manager/employee)")
	_ = fs.Parse(args)

	if err := validateUserForm(*u, *email, *p, *role); err != nil {
		fail(err)
	}
	if _, err := a.requireAction(ctx, authz.ActionManageUsers); err != nil {
		fail(err)
	}
	user, err := a.client.Register(ctx, api.RegisterRequest{
		Username: *u,
		Email:    *email,
		Password: *p,
		Role:     model.Role(*role),
	})
	if err != nil {
		fail(err)
	}
	printJSON(user)
}

func cmdUserEdit(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("user-edit", flag.ExitOnError)
	id := fs.Int("id", 0, "user id")
	email := fs.String("email", "", "new email")
	role := fs.String("role", "", "new role (admin/manager/employee)")
	active := fs.String("active", "", "set active state: true or false")
	_ = fs.Parse(args)

	if *id <= 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	if _, err := a.requireAction(ctx, authz.ActionManageUsers); err != nil {
		fail(err)
	}
	users, err := a.client.Users(ctx)
	if err != nil {
		fail(err)
	}
	var current *model.User
	for i := range users {
		if users[i].ID == *id {
			current = &users[i]
			break
		}
	}
	if current == nil {
		fail(fmt.Errorf("user %d not found", *id))
	}
	if *email != "" {
		if !strings.Contains(*email, "@") {
			fail(fmt.Errorf("validation: email looks invalid"))
		}
		current.Email = *email
	}
	if *role != "" {
		switch model.Role(*role) {
		case model.RoleAdmin, model.RoleManager, model.RoleEmployee:
			current.Role = model.Role(*role)
		default:
			fail(fmt.Errorf("validation: unknown role %q", *role))
		}
	}
	switch *active {
	case "":
	case "true":
		current.IsActive = true
	case "false":
		current.IsActive = false
	default:
		fail(fmt.Errorf("validation: -active must be true or false"))
	}

	updated, err := a.client.UpdateUser(ctx, *id, *current)
	if err != nil {
		fail(err)
	}
	printJSON(updated)
}

// ---- helpers ----

func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// confirm asks on stdin; anything but y/yes declines.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	ans := strings.ToLower(strings.TrimSpace(sc.Text()))
	return ans == "y" || ans == "yes"
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
