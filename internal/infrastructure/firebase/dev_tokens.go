package firebase

import (
	"context"
)

// GenerateLongLivedToken mints a custom token and, when an API key is
// configured, exchanges it for an ID token usable against the normal auth
// middleware. Development tooling only.
func (f *FirebaseAuthClient) GenerateLongLivedToken(ctx context.Context, uid string) (string, error) {
	customToken, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	if f.apiKey != "" {
		idToken, err := f.exchangeCustomTokenForIDToken(customToken)
		if err != nil {
			return "", err
		}
		return idToken, nil
	}

	return customToken, nil
}
