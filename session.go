package main

import (
	"context"
	"fmt"

	"github.com/cinebuzz/discovery/services/auth"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
)

func makeSessionCMDs() []cli.Command {
	signinCMD := cli.Command{
		Name:   "signin",
		Usage:  "Signs in against the auth backend and keeps the session",
		Action: signin,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   emailFlag,
				Usage:  "account email",
				EnvVar: "CINEBUZZ_EMAIL",
			},
			cli.StringFlag{
				Name:   passwordFlag,
				Usage:  "account password",
				EnvVar: "CINEBUZZ_PASSWORD",
			},
		},
	}
	signoutCMD := cli.Command{
		Name:   "signout",
		Usage:  "Forgets the kept session",
		Action: signout,
	}
	whoamiCMD := cli.Command{
		Name:   "whoami",
		Usage:  "Prints the user of the kept session",
		Action: whoami,
	}
	cmds := []cli.Command{signinCMD, signoutCMD, whoamiCMD}
	for k := range cmds {
		configureSession(&cmds[k])
	}
	return cmds
}

func configureSession(c *cli.Command) {
	c.Flags = store.RegisterFlags(c.Flags)
	c.Flags = auth.RegisterFlags(c.Flags)
	c.Flags = common.RegisterHTTPClientFlags(c.Flags)
}

func withSession(c *cli.Context, fn func(ctx context.Context, cl *auth.Client, ss *auth.SessionStore) error) error {
	if store.NeedsPG(c) {
		return errors.New("pg store backend is not supported by session commands")
	}
	b, err := store.NewBackend(c, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()
	return fn(context.Background(), auth.New(c, common.NewHTTPClient(c)), auth.NewSessionStore(b))
}

func signin(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, cl *auth.Client, ss *auth.SessionStore) error {
		sess, err := cl.Signin(ctx, auth.SigninInput{
			Email:    c.String(emailFlag),
			Password: c.String(passwordFlag),
		})
		if err != nil {
			return err
		}
		if err := ss.Set(ctx, sess); err != nil {
			return err
		}
		fmt.Printf("signed in as %v <%v>\n", sess.User.Name, sess.User.Email)
		return nil
	})
}

func signout(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, _ *auth.Client, ss *auth.SessionStore) error {
		if err := ss.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil
	})
}

func whoami(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, cl *auth.Client, ss *auth.SessionStore) error {
		sess, err := ss.Get(ctx)
		if err != nil {
			return err
		}
		if !sess.HasAuth() {
			fmt.Println("not signed in")
			return nil
		}
		u, err := cl.Me(ctx, sess.Token)
		if errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrUnauthorized) {
			if err := ss.Clear(ctx); err != nil {
				return err
			}
			fmt.Println("session expired, sign in again")
			return nil
		} else if err != nil {
			return err
		}
		fmt.Printf("%v <%v> (%v)\n", u.Name, u.Email, u.ID)
		return nil
	})
}
