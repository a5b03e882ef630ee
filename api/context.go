package api

import (
	"context"
)

type keyType string

const adminSubjectKey keyType = "adminSubject"

// ctxWithAdminSubject records the subject of a verified admin token
func ctxWithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}

// ctxGetAdminSubject returns the admin subject, if the request was authenticated
func ctxGetAdminSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(adminSubjectKey).(string)
	return subject, ok && subject != ""
}
