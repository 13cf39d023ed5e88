package services

import "errors"

// ─── Sentinel Errors ──────────────────────────────────────────────────────────

var (
	// ErrBookNotFound is returned when the requested book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookUnavailable is returned when a reservation finds no copy on the shelf.
	// Nothing has been written when it is returned.
	ErrBookUnavailable = errors.New("book unavailable in stock")

	// ErrInvalidBook is returned when a book payload misses a title, author or category,
	// or carries a negative stock quantity.
	ErrInvalidBook = errors.New("invalid book payload")

	// ErrLoanNotFound is returned when the referenced loan does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrLoanAlreadyReturned is returned when a return is attempted on a closed loan.
	ErrLoanAlreadyReturned = errors.New("loan already returned")

	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when another user already holds the username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUserHasOpenLoans is returned when deleting a user who still holds books.
	ErrUserHasOpenLoans = errors.New("user has open loans")

	// ErrInvalidUser is returned when a user payload misses the username or password,
	// or the password is too long to hash.
	ErrInvalidUser = errors.New("invalid user payload")

	// ErrInvalidCredentials is returned for any failed login. It deliberately does not
	// say whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("incorrect username or password")
)
