package user

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/celestix/gotgproto"
	"golang.org/x/term"
)

// terminalAuthConversator asks for the userbot login data on stdin.
type terminalAuthConversator struct {
	reader *bufio.Reader
}

func newTerminalAuthConversator() *terminalAuthConversator {
	return &terminalAuthConversator{reader: bufio.NewReader(os.Stdin)}
}

func (t *terminalAuthConversator) readLine(prompt string) (string, error) {
	fmt.Println(prompt)
	fmt.Print("> ")
	text, err := t.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (t *terminalAuthConversator) AskPhoneNumber() (string, error) {
	return t.readLine("Phone number of the userbot account (e.g. +44 123456):")
}

func (t *terminalAuthConversator) AskCode() (string, error) {
	return t.readLine("Login code (e.g. 123456):")
}

func (t *terminalAuthConversator) AskPassword() (string, error) {
	fmt.Println("2FA password:")
	fmt.Print("> ")
	pwd, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pwd)), nil
}

func (t *terminalAuthConversator) AuthStatus(status gotgproto.AuthStatus) {
	switch status.Event {
	case gotgproto.AuthStatusPhoneRetrial:
		fmt.Printf("Wrong phone number, %d attempts left\n", status.AttemptsLeft)
	case gotgproto.AuthStatusPasswordRetrial:
		fmt.Printf("Wrong 2FA password, %d attempts left\n", status.AttemptsLeft)
	case gotgproto.AuthStatusPhoneCodeRetrial:
		fmt.Printf("Wrong login code, %d attempts left\n", status.AttemptsLeft)
	}
}
