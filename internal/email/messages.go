package email

import "fmt"

// Message bodies for the auth flows. Kept as plain text, one per
// situation, so tests can assert on exact wording.

func RegistrationCode(code string) (subject, body string) {
	return "Registration Code for Silly Goals",
		fmt.Sprintf("Use code %s to confirm your new account and log in.", code)
}

func AlreadyRegistered() (subject, body string) {
	return "Silly Goals Registration",
		"Someone tried to register a new Silly Goals account with " +
			"this email. If this was you, Good News! you're already " +
			"registered, and you can just login instead. If not, that's a " +
			"little weird, but we stopped them. You might want to check for " +
			"weird activity on your email"
}

func LoginCode(code string) (subject, body string) {
	return "Login Code for Silly Goals",
		fmt.Sprintf("Use code %s to log in to your account.", code)
}

func UnknownLoginAttempt() (subject, body string) {
	return "Login Attempt at Silly Goals",
		"Someone tried to use your email to login at Silly Goals. " +
			"If this was you, you'll need to register first. Otherwise you " +
			"might want to look for other weird activity on your email. " +
			"They were not able to log in."
}

func EmailChangeCode(code string) (subject, body string) {
	return "Confirmation Code for Silly Goals",
		fmt.Sprintf("Use code %s to confirm your email address.", code)
}
