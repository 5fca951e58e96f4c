// Package admin implements scorekeeper-admin, the operator tool that works on
// the server database directly: creating accounts and producing password
// hashes for seeding.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/server/auth"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
)

// ErrUsage is returned for a missing or unknown command.
var ErrUsage = errors.New("usage error")

// UserService is the part of services.UserService the tool needs.
type UserService interface {
	Signup(ctx context.Context, req services.SignupRequest) (*models.User, error)
}

type App struct {
	users      UserService
	bcryptCost int
	reader     *bufio.Reader
	out        io.Writer
}

// NewApp builds the tool over users. Prompts are read from in and all output
// goes to out.
func NewApp(users UserService, bcryptCost int, in io.Reader, out io.Writer) *App {
	return &App{users: users, bcryptCost: bcryptCost, reader: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	switch args[0] {
	case "useradd":
		return a.userAdd(ctx)
	case "hashpw":
		return a.hashPassword()
	case "help":
		a.usage()
		return nil
	default:
		fmt.Fprintln(a.out, "Unknown command:", args[0])
		a.usage()
		return ErrUsage
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Available commands: useradd, hashpw, help")
}

func (a *App) userAdd(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.users.Signup(ctx, services.SignupRequest{
		UserName: userName,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return fmt.Errorf("error creating user %s: %w", userName, err)
	}

	fmt.Fprintf(a.out, "User %s created, id %s\n", u.UserName, u.ID)
	return nil
}

func (a *App) hashPassword() error {
	password, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	hash, err := auth.HashPassword(string(password), a.bcryptCost)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, hash)
	return nil
}

// newPassword asks twice and insists both entries agree.
func (a *App) newPassword() ([]byte, error) {
	first, err := GetPassword("Enter password", a.out)
	if err != nil {
		return nil, err
	}
	second, err := GetPassword("Repeat password", a.out)
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		common.WipeByteArray(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}
