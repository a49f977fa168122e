/*
Package accountsdk provides a client SDK for the accounts service.

# Overview

The accountsdk package holds the wire types shared by the service handlers and its
clients, the request validation rules, and a small HTTP client:

	client := accountsdk.NewClient("https://accounts.example.com")

	// Check service health
	health, err := client.Liveness(ctx)

	// Register and obtain a token
	account, err := client.Register(ctx, accountsdk.RegisterRequest{
		Email:    "jane@example.com",
		Password: "s3cur3P@ssw0rd",
		FullName: "Jane Doe",
	})
	token, err := client.Login(ctx, accountsdk.LoginRequest{
		Email:    "jane@example.com",
		Password: "s3cur3P@ssw0rd",
	})

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status and the
machine readable code from the error envelope:

	_, err := client.GetAccount(ctx, id)
	if accountsdk.IsCode(err, accountsdk.ErrorCodeUserNotFound) {
		// handle missing account
	}

# Validation

Request types implement Validate using ozzo-validation. The service runs the same
rules, so clients can validate locally before sending. FieldErrors flattens a
validation error into the field map carried by VALIDATION_ERROR responses.
*/
package accountsdk
