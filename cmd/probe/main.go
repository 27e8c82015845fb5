package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"meddle/client"
	"meddle/domain"
	"meddle/registry"
)

// Exit codes for the probe application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
	exitUsage   = 3
)

// Config defines the probe-side environment variables.
type Config struct {
	ServerAddr string `envconfig:"MEDDLE_ADDR" default:"tcp://localhost:32100"`
	Name       string `envconfig:"MEDDLE_NAME"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

const usage = `usage: probe <command> [args]

commands:
  hello                          register and print the assigned id
  users                          list online users
  channels                       list channels and participants
  tags                           print the hashtag index
  log <channel>                  print a channel's message history
  create [invitee ...]           create a channel, inviting known users
  publish <channel> <text ...>   publish a message into a channel
  ping                           refresh this identity's heartbeat
`

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Probe error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return exitUsage, nil
	}

	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Connect and register. Every command needs an identity: queries for
	// liveness of the probe itself, mutations for the sender id.
	c, err := client.Dial(config.ServerAddr, log)
	if err != nil {
		return exitRuntime, err
	}
	defer c.Close()

	accepted, err := c.Hello(probeName(config.Name), domain.CurrentVersion)
	if err != nil {
		return exitRuntime, err
	}

	if err := dispatch(c, accepted.ID, args); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

func dispatch(c *client.Client, id domain.UserID, args []string) error {
	switch args[0] {
	case "hello":
		color.Green.Printf("ok id=%d\n", id)
		return nil

	case "users":
		users, err := c.Users()
		if err != nil {
			return err
		}
		renderList("ONLINE", users)
		return nil

	case "channels":
		channels, err := c.Channels()
		if err != nil {
			return err
		}
		renderChannels(channels)
		return nil

	case "tags":
		tags, err := c.ActiveTags()
		if err != nil {
			return err
		}
		renderTags(tags)
		return nil

	case "log":
		if len(args) != 2 {
			return fmt.Errorf("log expects exactly one channel name")
		}
		entries, err := c.Log(args[1])
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Printf("%s: %s\n", entry.Sender, entry.Text)
		}
		return nil

	case "create":
		channel, err := c.CreateChannel(id, args[1:])
		if err != nil {
			color.Red.Println("nok")
			return err
		}
		color.Green.Println(channel)
		return nil

	case "publish":
		if len(args) < 3 {
			return fmt.Errorf("publish expects a channel and a message")
		}
		if err := c.Publish(id, args[1], strings.Join(args[2:], " ")); err != nil {
			color.Red.Println("nok")
			return err
		}
		color.Green.Println("ok")
		return nil

	case "ping":
		if err := c.Ping(id); err != nil {
			color.Red.Println("nok")
			return err
		}
		color.Green.Println("ok")
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func renderList(header string, items []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{header})
	for _, item := range items {
		table.Append([]string{item})
	}
	table.Render()
}

func renderChannels(channels map[string][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"CHANNEL", "PARTICIPANTS"})
	for _, name := range sortedKeys(channels) {
		table.Append([]string{name, strings.Join(channels[name], ", ")})
	}
	table.Render()
}

func renderTags(tags map[string][]registry.Occurrence) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"TAG", "MENTIONS", "LAST CHANNEL"})
	for _, tag := range sortedKeys(tags) {
		occurrences := tags[tag]
		last := ""
		if len(occurrences) > 0 {
			last = occurrences[len(occurrences)-1].Channel
		}
		table.Append([]string{tag, fmt.Sprintf("%d", len(occurrences)), last})
	}
	table.Render()
}

// probeName falls back to a generated one-shot identity when none is
// configured, so two probes on the same host don't collide.
func probeName(name string) string {
	if name != "" {
		return name
	}
	return "probe-" + uuid.NewString()[:8]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
