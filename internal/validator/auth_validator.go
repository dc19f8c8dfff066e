package validator

import (
	"net/mail"
	"strings"
)

const minPasswordLen = 8

// よくある弱いパスワード
var weakPasswords = map[string]struct{}{
	"password":  {},
	"password1": {},
	"12345678":  {},
	"123456789": {},
	"qwertyui":  {},
	"11111111":  {},
}

// サインアップの入力を検証
func ValidateRegister(email string, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	if len(password) < minPasswordLen {
		return newError("password", "Ensure this field has at least 8 characters")
	}
	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return newError("password", "This password is too common")
	}
	return nil
}

// ログインの入力を検証
func ValidateLogin(email string, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return newError("password", "This field is required")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return newError("email", "This field is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, ".") {
		return newError("email", "Enter a valid email address")
	}
	return nil
}
