package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/relay/pkg/client"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "relayctl - manual client for a Relay messaging cluster",
	Long: `relayctl is a thin command-line client over pkg/client, for exercising
a Relay cluster's 14 messaging RPCs by hand during development or demoing.
Every command dials --addr (any node; leader redirects are followed
automatically) and most require --user and --token from a prior 'login'.`,
}

func init() {
	rootCmd.PersistentFlags().String("addr", "127.0.0.1:7946", "Address of any node in the cluster")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Per-command RPC timeout")

	rootCmd.AddCommand(createAccountCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(listAccountsCmd)
	rootCmd.AddCommand(conversationCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(readMessagesCmd)
	rootCmd.AddCommand(deleteMessageCmd)
	rootCmd.AddCommand(deleteAccountCmd)
	rootCmd.AddCommand(unreadCmd)
	rootCmd.AddCommand(messageInfoCmd)
	rootCmd.AddCommand(usernameCmd)
	rootCmd.AddCommand(markReadCmd)
	rootCmd.AddCommand(userByUsernameCmd)
	rootCmd.AddCommand(leaderPingCmd)

	authFlags(sendCmd, conversationCmd, readMessagesCmd, deleteMessageCmd, deleteAccountCmd,
		unreadCmd, messageInfoCmd, usernameCmd, markReadCmd, userByUsernameCmd)
}

// authFlags adds the --user/--token pair every authenticated RPC needs.
func authFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().Uint32("user", 0, "Your user id, from 'login' (required)")
		c.Flags().String("token", "", "Your session token, from 'login' (required)")
		_ = c.MarkFlagRequired("user")
		_ = c.MarkFlagRequired("token")
	}
}

func newClient(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc) {
	addr, _ := cmd.Flags().GetString("addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return client.NewClient(addr), ctx, cancel
}

var createAccountCmd = &cobra.Command{
	Use:   "create-account <username> <credential>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		id, err := c.CreateAccount(ctx, args[0], []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("created user %d (%s)\n", id, args[0])
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <credential>",
	Short: "Log in and print a session token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		id, token, err := c.Login(ctx, args[0], []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("user=%d\ntoken=%s\n", id, token)
		return nil
	},
}

var listAccountsCmd = &cobra.Command{
	Use:   "list-accounts [pattern]",
	Short: "List usernames matching a glob pattern ('*' and '?'), defaults to '*'",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		names, err := c.ListAccounts(ctx, pattern)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var conversationCmd = &cobra.Command{
	Use:   "conversation <peer-id>",
	Short: "Display the message history with another user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, peerID, err := parseAuthAndUint(cmd, args[0])
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		msgs, err := c.DisplayConversation(ctx, userID, token, peerID)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			fmt.Printf("[%d] from %d: %s\n", m.UID, m.SenderID, m.Content)
		}
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <receiver-id> <content>",
	Short: "Send a message to another user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, receiverID, err := parseAuthAndUint(cmd, args[0])
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		uid, err := c.SendMessage(ctx, userID, token, receiverID, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("sent message %d\n", uid)
		return nil
	},
}

var readMessagesCmd = &cobra.Command{
	Use:   "read-messages <n>",
	Short: "Pop up to n unread messages, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, n, err := parseAuthAndUint(cmd, args[0])
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		ids, err := c.ReadMessages(ctx, userID, token, int32(n))
		if err != nil {
			return err
		}
		fmt.Println(ids)
		return nil
	},
}

var deleteMessageCmd = &cobra.Command{
	Use:   "delete-message <message-id>",
	Short: "Delete a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, msgID, err := parseAuthAndUint(cmd, args[0])
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		if err := c.DeleteMessage(ctx, userID, token, msgID); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete your own account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, err := parseAuth(cmd)
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		if err := c.DeleteAccount(ctx, userID, token); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

var unreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "List your unread message ids without consuming them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, err := parseAuth(cmd)
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		ids, err := c.GetUnreadMessages(ctx, userID, token)
		if err != nil {
			return err
		}
		fmt.Println(ids)
		return nil
	},
}

var messageInfoCmd = &cobra.Command{
	Use:   "message-info <message-id>",
	Short: "Show a single message's detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, msgID, err := parseAuthAndUint(cmd, args[0])
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		m, err := c.GetMessageInformation(ctx, userID, token, msgID)
		if err != nil {
			return err
		}
		fmt.Printf("[%d] from %d (read=%v): %s\n", m.UID, m.SenderID, m.Read, m.Content)
		return nil
	},
}

var usernameCmd = &cobra.Command{
	Use:   "username <target-id>",
	Short: "Look up a username by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, targetID, err := parseAuthAndUint(cmd, args[0])
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		name, err := c.GetUsernameByID(ctx, userID, token, targetID)
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}

var markReadCmd = &cobra.Command{
	Use:   "mark-read <message-id>",
	Short: "Mark a message as read and drop it from your unread queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, msgID, err := parseAuthAndUint(cmd, args[0])
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		if err := c.MarkMessageAsRead(ctx, userID, token, msgID); err != nil {
			return err
		}
		fmt.Println("marked read")
		return nil
	},
}

var userByUsernameCmd = &cobra.Command{
	Use:   "user-by-username <username>",
	Short: "Look up a user id by username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, token, err := parseAuth(cmd)
		if err != nil {
			return err
		}
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		id, err := c.GetUserByUsername(ctx, userID, token, args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var leaderPingCmd = &cobra.Command{
	Use:   "leader-ping",
	Short: "Ask a node directly whether it believes itself leader",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		c, ctx, cancel := newClient(cmd)
		defer cancel()
		defer c.Close()
		resp, err := c.LeaderPing(ctx, addr)
		if err != nil {
			return err
		}
		fmt.Printf("is_leader=%v leader_addr=%s\n", resp.IsLeader, resp.LeaderAddr)
		return nil
	},
}

func parseAuth(cmd *cobra.Command) (userID uint32, token string, err error) {
	userID, _ = cmd.Flags().GetUint32("user")
	token, _ = cmd.Flags().GetString("token")
	if token == "" {
		return 0, "", fmt.Errorf("--token is required")
	}
	return userID, token, nil
}

func parseAuthAndUint(cmd *cobra.Command, raw string) (userID uint32, token string, n uint32, err error) {
	userID, token, err = parseAuth(cmd)
	if err != nil {
		return 0, "", 0, err
	}
	var v int64
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil || v < 0 {
		return 0, "", 0, fmt.Errorf("invalid numeric argument %q", raw)
	}
	return userID, token, uint32(v), nil
}
