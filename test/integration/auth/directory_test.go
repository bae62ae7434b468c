// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

//go:build integration

package auth_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/lumenmud/lumenmud/internal/auth"
)

var _ = Describe("Account directory", func() {
	ctx := context.Background()

	AfterEach(func() {
		cleanupAccounts(ctx, env.pool)
	})

	Describe("CreateAccount", func() {
		It("creates an account and finds it case-insensitively", func() {
			account, err := env.Directory.CreateAccount(ctx, "Kaleth", "opensesame1", "player")
			Expect(err).NotTo(HaveOccurred())
			Expect(account.State).To(Equal(auth.StateUnvalidated))

			found, err := env.Directory.LookupByName(ctx, "kaleth")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(account.ID))
			Expect(found.Name).To(Equal("Kaleth"))
		})

		It("rejects a name differing only in case", func() {
			_, err := env.Directory.CreateAccount(ctx, "Kaleth", "opensesame1", "player")
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Directory.CreateAccount(ctx, "KALETH", "different2", "player")
			Expect(err).To(MatchError(auth.ErrNameTaken))
		})

		It("lets exactly one winner through a concurrent registration race", func() {
			const racers = 8
			var wg sync.WaitGroup
			errs := make([]error, racers)

			for i := range racers {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()
					_, errs[i] = env.Directory.CreateAccount(ctx, "Racer", "opensesame1", "player")
				}(i)
			}
			wg.Wait()

			winners := 0
			for _, err := range errs {
				if err == nil {
					winners++
				} else {
					Expect(err).To(MatchError(auth.ErrNameTaken))
				}
			}
			Expect(winners).To(Equal(1))
		})
	})

	Describe("passwords", func() {
		It("verifies the stored password and survives rotation", func() {
			account, err := env.Directory.CreateAccount(ctx, "Kaleth", "opensesame1", "player")
			Expect(err).NotTo(HaveOccurred())

			ok, err := env.Directory.VerifyPassword(ctx, account, "opensesame1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = env.Directory.VerifyPassword(ctx, account, "wrong")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			Expect(env.Directory.SetPassword(ctx, account, "brandnew7", false)).To(Succeed())

			reloaded, err := env.Directory.LookupByName(ctx, "Kaleth")
			Expect(err).NotTo(HaveOccurred())
			ok, err = env.Directory.VerifyPassword(ctx, reloaded, "brandnew7")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("e-mail validation lifecycle", func() {
		It("persists the pending code and the validated state", func() {
			account, err := env.Directory.CreateAccount(ctx, "Kaleth", "opensesame1", "player")
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Directory.BeginEmailValidation(ctx, account, "kaleth@example.com", "4812")).To(Succeed())

			reloaded, err := env.Directory.LookupByName(ctx, "Kaleth")
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.State).To(Equal(auth.StatePendingEmailConfirmation))
			Expect(reloaded.Email).To(Equal("kaleth@example.com"))
			Expect(reloaded.ValidationCode).To(Equal("4812"))

			Expect(env.Directory.ConfirmValidation(ctx, reloaded)).To(Succeed())

			final, err := env.Directory.LookupByName(ctx, "Kaleth")
			Expect(err).NotTo(HaveOccurred())
			Expect(final.State).To(Equal(auth.StateValid))
			Expect(final.ValidationCode).To(BeEmpty())
		})

		It("records that the recovery secret was dispatched", func() {
			account, err := env.Directory.CreateAccount(ctx, "Kaleth", "opensesame1", "player")
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Directory.MarkValidationSent(ctx, account)).To(Succeed())

			reloaded, err := env.Directory.LookupByName(ctx, "Kaleth")
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.SentValidation).To(BeTrue())
		})
	})

	Describe("bans", func() {
		It("returns stored ban patterns", func() {
			_, err := env.pool.Exec(ctx, `
				INSERT INTO bans (name_pattern, addr_pattern, reason)
				VALUES ('troll*', '', 'repeat abuse'), ('', '192.0.2.*', 'spam host')`)
			Expect(err).NotTo(HaveOccurred())

			entries, err := env.Bans.CurrentBans(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))

			matcher, err := auth.NewGlobBanMatcher(env.Bans)
			Expect(err).NotTo(HaveOccurred())

			banned, err := matcher.IsBanned(ctx, "Trollface", "203.0.113.7")
			Expect(err).NotTo(HaveOccurred())
			Expect(banned).To(BeTrue())

			banned, err = matcher.IsBanned(ctx, "Kaleth", "192.0.2.44")
			Expect(err).NotTo(HaveOccurred())
			Expect(banned).To(BeTrue())

			banned, err = matcher.IsBanned(ctx, "Kaleth", "203.0.113.7")
			Expect(err).NotTo(HaveOccurred())
			Expect(banned).To(BeFalse())
		})
	})
})
