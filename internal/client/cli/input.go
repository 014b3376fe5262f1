package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/focustank/internal/common"
)

var errPasswordMismatch = errors.New("passwords do not match")

// readPassword reads without echo; tests swap it out.
var readPassword = term.ReadPassword

// GetSimpleText prints prompt and returns the next trimmed line. A final
// line without a newline still counts.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, fmt.Errorf("%w: empty password", common.ErrInvalidArgument)
	}
	return pw, nil
}

// GetPassword reads a password from the terminal. The caller wipes it.
func GetPassword(w io.Writer) ([]byte, error) {
	return promptPassword(w, "Enter password")
}

// GetNewPassword reads a password twice and fails if the entries differ.
func GetNewPassword(w io.Writer) ([]byte, error) {
	first, err := promptPassword(w, "Choose a password")
	if err != nil {
		return nil, err
	}
	second, err := promptPassword(w, "Repeat password")
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, errPasswordMismatch
	}
	return first, nil
}
