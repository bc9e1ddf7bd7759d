package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/parley-im/parley/internal/chat"
	"github.com/parley-im/parley/internal/client"
	"github.com/parley-im/parley/internal/config"
	"github.com/parley-im/parley/internal/transport"
	"go.uber.org/zap"
)

func main() {
	serverFlag := flag.String("server", "", "server address (default from config)")
	asFlag := flag.String("as", "", "act as the named user")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	addr := *serverFlag
	if addr == "" {
		addr = config.Default().ListenAddr
	}
	c := client.New(transport.NewTCPSource(addr), zap.NewNop())
	app := &app{client: c, jsonOut: *jsonFlag, as: *asFlag}

	switch args[0] {
	case "info":
		app.cmdInfo()
	case "users":
		app.cmdUsers()
	case "conversations":
		app.cmdConversations()
	case "members":
		app.cmdMembers(rest(args, 1, "members <title>"))
	case "messages":
		app.cmdMessages(rest(args, 1, "messages <title>"))
	case "new-user":
		app.cmdNewUser(rest(args, 1, "new-user <name>"))
	case "new-conversation":
		app.cmdNewConversation(rest(args, 1, "new-conversation <title> --as <user>"))
	case "send":
		if len(args) < 3 {
			usageError("send <title> <body> --as <user>")
		}
		app.cmdSend(args[1], strings.Join(args[2:], " "))
	case "follow":
		if len(args) < 3 {
			usageError("follow <user|conversation> <name> --as <user>")
		}
		app.cmdFollow(args[1], args[2], true)
	case "unfollow":
		if len(args) < 3 {
			usageError("unfollow <user|conversation> <name> --as <user>")
		}
		app.cmdFollow(args[1], args[2], false)
	case "add-member":
		if len(args) < 3 {
			usageError("add-member <user> <title> --as <user>")
		}
		app.cmdAddMember(args[1], args[2])
	case "set-level":
		if len(args) < 4 {
			usageError("set-level <user> <title> <member|owner|creator> --as <user>")
		}
		app.cmdSetLevel(args[1], args[2], args[3])
	case "join":
		app.cmdJoin(rest(args, 1, "join <title> --as <user>"))
	case "updates":
		if len(args) < 3 {
			usageError("updates <user|conversation> <name> --as <user>")
		}
		app.cmdUpdates(args[1], args[2])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: parleyctl [--server <addr>] [--as <user>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  info                                    Show server info")
	fmt.Fprintln(os.Stderr, "  users                                   List users")
	fmt.Fprintln(os.Stderr, "  conversations                           List conversations")
	fmt.Fprintln(os.Stderr, "  members <title>                         List conversation members")
	fmt.Fprintln(os.Stderr, "  messages <title>                        Show conversation messages")
	fmt.Fprintln(os.Stderr, "  new-user <name>                         Create a user")
	fmt.Fprintln(os.Stderr, "  new-conversation <title>                Create a conversation")
	fmt.Fprintln(os.Stderr, "  send <title> <body>                     Send a message")
	fmt.Fprintln(os.Stderr, "  follow user|conversation <name>         Follow a user or conversation")
	fmt.Fprintln(os.Stderr, "  unfollow user|conversation <name>       Stop following")
	fmt.Fprintln(os.Stderr, "  add-member <user> <title>               Add a user to a conversation")
	fmt.Fprintln(os.Stderr, "  set-level <user> <title> <level>        Change a member's permission level")
	fmt.Fprintln(os.Stderr, "  join <title>                            Check conversation membership")
	fmt.Fprintln(os.Stderr, "  updates user|conversation <name>        Poll for activity since last check")
}

func usageError(usage string) {
	fmt.Fprintf(os.Stderr, "usage: parleyctl %s\n", usage)
	os.Exit(1)
}

func rest(args []string, i int, usage string) string {
	if len(args) <= i {
		usageError(usage)
	}
	return args[i]
}

type app struct {
	client  *client.Client
	jsonOut bool
	as      string
}

func (a *app) fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// requester resolves the --as flag to a user id.
func (a *app) requester() uuid.UUID {
	if a.as == "" {
		a.fail("this command needs --as <user>")
	}
	for _, u := range a.client.Users() {
		if u.Name == a.as {
			return u.ID
		}
	}
	a.fail("unknown user %q", a.as)
	return uuid.Nil
}

// conversation resolves a title to its header.
func (a *app) conversation(title string) chat.ConversationHeader {
	for _, conv := range a.client.Conversations() {
		if conv.Title == title {
			return conv
		}
	}
	a.fail("unknown conversation %q", title)
	return chat.ConversationHeader{}
}

func (a *app) outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		a.fail("%v", err)
	}
}

func (a *app) printStatus(status int32) {
	switch status {
	case chat.StatusOK:
		fmt.Println("ok")
	case chat.StatusNoOp:
		fmt.Println("nothing to do")
	case chat.StatusNotFound:
		fmt.Println("not found")
	case chat.StatusDenied:
		fmt.Println("denied")
	default:
		fmt.Printf("status %d\n", status)
	}
}

func (a *app) cmdInfo() {
	info := a.client.Info()
	if info == nil {
		a.fail("cannot reach server")
	}
	if a.jsonOut {
		a.outputJSON(info)
		return
	}
	fmt.Printf("Version:  %s\n", info.Version)
	fmt.Printf("Started:  %s\n", info.StartTime.Local())
}

func (a *app) cmdUsers() {
	users := a.client.Users()
	if a.jsonOut {
		a.outputJSON(users)
		return
	}
	for _, u := range users {
		fmt.Printf("%s  %s\n", u.ID, u.Name)
	}
}

func (a *app) cmdConversations() {
	convs := a.client.Conversations()
	if a.jsonOut {
		a.outputJSON(convs)
		return
	}
	for _, conv := range convs {
		fmt.Printf("%s  %s\n", conv.ID, conv.Title)
	}
}

func (a *app) cmdMembers(title string) {
	conv := a.conversation(title)
	entries := a.client.ListUsers(conv.ID)
	if a.jsonOut {
		a.outputJSON(entries)
		return
	}
	for _, e := range entries {
		fmt.Println(e)
	}
}

func (a *app) cmdMessages(title string) {
	conv := a.conversation(title)
	payloads := a.client.ConversationPayloads([]uuid.UUID{conv.ID})
	if len(payloads) == 0 {
		a.fail("no payload for conversation %q", title)
	}

	// Walk the chain from the first message.
	var msgs []chat.Message
	for id := payloads[0].FirstMessage; id != uuid.Nil; {
		batch := a.client.Messages([]uuid.UUID{id})
		if len(batch) == 0 {
			break
		}
		msgs = append(msgs, batch[0])
		id = batch[0].Next
	}

	if a.jsonOut {
		a.outputJSON(msgs)
		return
	}
	for _, m := range msgs {
		fmt.Printf("[%s] %s: %s\n", m.Created.Local().Format("15:04:05"), m.Author, m.Body)
	}
}

func (a *app) cmdNewUser(name string) {
	user := a.client.NewUser(name)
	if user == nil {
		a.fail("could not create user")
	}
	if a.jsonOut {
		a.outputJSON(user)
		return
	}
	fmt.Printf("created user %s (%s)\n", user.Name, user.ID)
}

func (a *app) cmdNewConversation(title string) {
	conv := a.client.NewConversation(title, a.requester())
	if conv == nil {
		a.fail("could not create conversation")
	}
	if a.jsonOut {
		a.outputJSON(conv)
		return
	}
	fmt.Printf("created conversation %s (%s)\n", conv.Title, conv.ID)
}

func (a *app) cmdSend(title, body string) {
	conv := a.conversation(title)
	msg := a.client.NewMessage(a.requester(), conv.ID, body)
	if msg == nil {
		a.fail("could not send message")
	}
	if a.jsonOut {
		a.outputJSON(msg)
		return
	}
	fmt.Printf("sent %s\n", msg.ID)
}

func (a *app) cmdFollow(kind, name string, follow bool) {
	requester := a.requester()
	var status int32
	switch kind {
	case "user":
		if follow {
			status = a.client.AddUserInterest(name, requester)
		} else {
			status = a.client.RemoveUserInterest(name, requester)
		}
	case "conversation":
		if follow {
			status = a.client.AddConversationInterest(name, requester)
		} else {
			status = a.client.RemoveConversationInterest(name, requester)
		}
	default:
		usageError("follow <user|conversation> <name> --as <user>")
	}
	a.printStatus(status)
}

func (a *app) cmdAddMember(name, title string) {
	a.printStatus(a.client.AddUserToConversation(name, title, a.requester()))
}

func (a *app) cmdSetLevel(name, title, level string) {
	var lvl chat.PermissionLevel
	switch level {
	case "member":
		lvl = chat.PermissionMember
	case "owner":
		lvl = chat.PermissionOwner
	case "creator":
		lvl = chat.PermissionCreator
	default:
		usageError("set-level <user> <title> <member|owner|creator> --as <user>")
	}
	a.printStatus(a.client.ChangePermissionLevel(name, title, lvl, a.requester()))
}

func (a *app) cmdJoin(title string) {
	a.printStatus(a.client.AttemptJoinConversation(title, a.requester()))
}

func (a *app) cmdUpdates(kind, name string) {
	requester := a.requester()
	switch kind {
	case "user":
		updates := a.client.UserStatusUpdate(name, requester)
		if a.jsonOut {
			a.outputJSON(updates)
			return
		}
		for _, u := range updates {
			fmt.Println(u)
		}
	case "conversation":
		count := a.client.ConversationStatusUpdate(name, requester)
		if a.jsonOut {
			a.outputJSON(map[string]int32{"new_messages": count})
			return
		}
		fmt.Printf("%d new messages\n", count)
	default:
		usageError("updates <user|conversation> <name> --as <user>")
	}
}
