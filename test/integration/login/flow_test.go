// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

//go:build integration

package login_test

import (
	"bytes"
	"context"
	"net"
	"regexp"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/lumenmud/lumenmud/internal/auth"
)

// client is a minimal telnet client for driving the login dialog over TCP.
type client struct {
	conn net.Conn
	mu   sync.Mutex
	buf  bytes.Buffer
}

func dialServer() *client {
	conn, err := net.Dial("tcp", env.server.Addr())
	Expect(err).NotTo(HaveOccurred())

	c := &client{conn: conn}
	go func() {
		chunk := make([]byte, 4096)
		for {
			n, readErr := conn.Read(chunk)
			if n > 0 {
				c.mu.Lock()
				c.buf.Write(chunk[:n])
				c.mu.Unlock()
			}
			if readErr != nil {
				return
			}
		}
	}()
	return c
}

func (c *client) close() {
	_ = c.conn.Close()
}

func (c *client) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

func (c *client) waitFor(substr string) {
	GinkgoHelper()
	Eventually(c.output, 5*time.Second).Should(ContainSubstring(substr))
}

func (c *client) sendLine(line string) {
	GinkgoHelper()
	_, err := c.conn.Write([]byte(line + "\r\n"))
	Expect(err).NotTo(HaveOccurred())
}

// secretRe matches the indented secret line in validation mail bodies.
var secretRe = regexp.MustCompile(`(?m)^ {4}(\S+)$`)

func lastMailSecret() string {
	GinkgoHelper()
	Eventually(env.notifier.sent, 5*time.Second).ShouldNot(BeEmpty())
	mail := env.notifier.sent()
	matches := secretRe.FindStringSubmatch(mail[len(mail)-1].body)
	Expect(matches).To(HaveLen(2))
	return matches[1]
}

var _ = Describe("Login dialog over telnet", func() {
	ctx := context.Background()

	AfterEach(func() {
		env.resetState(ctx)
	})

	It("registers, validates, and logs in a new account", func() {
		c := dialServer()
		defer c.close()

		c.waitFor("NOUVEAU")
		c.sendLine("nouveau")
		c.waitFor("Enter the name of your new account.")
		c.sendLine("Kaleth")
		c.waitFor("Enter the password for this new account.")
		c.sendLine("opensesame1")
		c.waitFor("e-mail address")
		c.sendLine("kaleth@example.com")
		c.waitFor("confirmation code has been sent")

		code := lastMailSecret()
		c.sendLine(code)
		c.waitFor("Welcome back, Kaleth!")

		account, err := env.directory.LookupByName(ctx, "Kaleth")
		Expect(err).NotTo(HaveOccurred())
		Expect(account.State).To(Equal(auth.StateValid))
		Expect(account.Email).To(Equal("kaleth@example.com"))

		// Reconnect and log straight in.
		c2 := dialServer()
		defer c2.close()
		c2.waitFor("NOUVEAU")
		c2.sendLine("kaleth")
		c2.waitFor("Enter the password for the account Kaleth.")
		c2.sendLine("opensesame1")
		c2.waitFor("Welcome back, Kaleth!")
	})

	It("walks a legacy account through temporary password recovery", func() {
		account, err := env.directory.CreateAccount(ctx, "Oldtimer", "forgotten9", "player")
		Expect(err).NotTo(HaveOccurred())
		_, err = env.pool.Exec(ctx,
			"UPDATE accounts SET email = $2 WHERE id = $1",
			account.ID.String(), "oldtimer@example.com")
		Expect(err).NotTo(HaveOccurred())

		c := dialServer()
		defer c.close()

		c.waitFor("NOUVEAU")
		c.sendLine("oldtimer")
		c.waitFor("temporary password")

		temp := lastMailSecret()
		c.sendLine(temp)
		c.waitFor("Temporary password accepted.")
		c.sendLine("brandnew7")
		c.waitFor("Welcome back, Oldtimer!")

		reloaded, err := env.directory.LookupByName(ctx, "Oldtimer")
		Expect(err).NotTo(HaveOccurred())
		Expect(reloaded.State).To(Equal(auth.StateValid))

		ok, err := env.directory.VerifyPassword(ctx, reloaded, "brandnew7")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("disconnects after three wrong passwords", func() {
		account, err := env.directory.CreateAccount(ctx, "Kaleth", "opensesame1", "player")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.directory.BeginEmailValidation(ctx, account, "kaleth@example.com", "0000")).To(Succeed())
		Expect(env.directory.ConfirmValidation(ctx, account)).To(Succeed())

		c := dialServer()
		defer c.close()

		c.waitFor("NOUVEAU")
		c.sendLine("kaleth")
		c.waitFor("Enter the password for the account Kaleth.")
		c.sendLine("wrong1x")
		c.waitFor("Invalid password.")
		c.sendLine("wrong2x")
		c.sendLine("wrong3x")
		c.waitFor("Too many failed attempts.")
	})

	It("turns away a banned account after the correct password", func() {
		account, err := env.directory.CreateAccount(ctx, "Trollface", "opensesame1", "player")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.directory.BeginEmailValidation(ctx, account, "troll@example.com", "0000")).To(Succeed())
		Expect(env.directory.ConfirmValidation(ctx, account)).To(Succeed())

		_, err = env.pool.Exec(ctx,
			"INSERT INTO bans (name_pattern, reason) VALUES ('troll*', 'repeat abuse')")
		Expect(err).NotTo(HaveOccurred())

		c := dialServer()
		defer c.close()

		c.waitFor("NOUVEAU")
		c.sendLine("trollface")
		c.waitFor("Enter the password for the account Trollface.")
		c.sendLine("opensesame1")
		c.waitFor("banned")
	})
})
