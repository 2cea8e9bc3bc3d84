// reportdctl is a small operator CLI for a running reportd instance. It
// logs in with an admin account and runs one subcommand against the API.
//
// Usage:
//
//	reportdctl -addr http://localhost:8080 -username admin -password ... users
//	reportdctl ... permissions
//	reportdctl ... grant -user 2 -company 3 -write
//	reportdctl ... revoke -user 2 -company 3
//	reportdctl ... report -company 1 -from 2024-01-01 -to 2024-03-31
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type envelope struct {
	OK   bool            `json:"ok"`
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type client struct {
	addr  string
	token string
	http  *http.Client
	log   *logrus.Logger
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "reportd base URL")
	username := flag.String("username", "admin", "login username")
	password := flag.String("password", "", "login password")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if flag.NArg() < 1 {
		log.Fatal("missing subcommand: users, permissions, grant, revoke, or report")
	}
	if *password == "" {
		log.Fatal("-password is required")
	}

	c := &client{
		addr: *addr,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
	if err := c.login(*username, *password); err != nil {
		log.WithError(err).Fatal("login failed")
	}
	log.WithField("username", *username).Debug("logged in")

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch cmd {
	case "users":
		err = c.show("GET", "/api/admin/users", nil)
	case "permissions":
		err = c.show("GET", "/api/admin/permissions", nil)
	case "grant":
		err = c.permissionChange("/api/admin/permissions/grant", args)
	case "revoke":
		err = c.permissionChange("/api/admin/permissions/revoke", args)
	case "report":
		err = c.report(args)
	default:
		log.Fatalf("unknown subcommand %q", cmd)
	}
	if err != nil {
		log.WithError(err).Fatal(cmd + " failed")
	}
}

func (c *client) call(method, path string, body interface{}) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.addr+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.WithFields(logrus.Fields{"method": method, "path": path}).Debug("request")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.OK {
		return nil, fmt.Errorf("%s (code %d)", env.Msg, env.Code)
	}
	return &env, nil
}

func (c *client) login(username, password string) error {
	env, err := c.call("POST", "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return err
	}
	c.token = result.Token
	return nil
}

// show runs the request and pretty-prints the data payload
func (c *client) show(method, path string, body interface{}) error {
	env, err := c.call(method, path, body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, env.Data, "", "  "); err != nil {
		return err
	}
	fmt.Println(pretty.String())
	return nil
}

func (c *client) permissionChange(path string, args []string) error {
	fs := flag.NewFlagSet("permission", flag.ExitOnError)
	user := fs.Int64("user", 0, "target user id")
	company := fs.Int64("company", 0, "company id")
	read := fs.Bool("read", true, "change read access")
	write := fs.Bool("write", false, "change write access")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return c.show("POST", path, map[string]interface{}{
		"targetUserId": *user,
		"companyId":    *company,
		"read":         *read,
		"write":        *write,
	})
}

func (c *client) report(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	company := fs.Int64("company", 0, "company id")
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	kind := fs.String("kind", "cost_benefit", "report kind: cost_benefit or ap_summary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/reports/%s?company_id=%d&date_from=%s&date_to=%s",
		*kind, *company, *from, *to)
	return c.show("GET", path, nil)
}
