package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestGoogleIDTokenVerifier(t *testing.T) {
	tests := []struct {
		name     string
		payload  *idtoken.Payload
		err      error
		want     string
		verified bool
		wantErr  bool
	}{
		{
			name: "verified email",
			payload: &idtoken.Payload{Subject: "1097", Claims: map[string]interface{}{
				"email": "sari@example.org", "name": "Sari", "email_verified": true,
			}},
			want:     "Sari",
			verified: true,
		},
		{
			name: "string flag and no name",
			payload: &idtoken.Payload{Subject: "1098", Claims: map[string]interface{}{
				"email": "budi@example.org", "email_verified": "true",
			}},
			want:     "budi@example.org",
			verified: true,
		},
		{
			name: "unverified email",
			payload: &idtoken.Payload{Subject: "1099", Claims: map[string]interface{}{
				"email": "tamu@example.org", "name": "Tamu",
			}},
			want: "Tamu",
		},
		{name: "invalid token", err: errors.New("idtoken: token expired"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAudience string
			v := &googleIDTokenVerifier{
				clientID: "client-123.apps.googleusercontent.com",
				validate: func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
					gotAudience = audience
					return tt.payload, tt.err
				},
			}

			identity, err := v.Verify(context.Background(), " tok ")
			assert.Equal(t, "client-123.apps.googleusercontent.com", gotAudience)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.payload.Subject, identity.Subject)
			assert.Equal(t, tt.want, identity.Name)
			assert.Equal(t, tt.verified, identity.EmailVerified)
		})
	}
}
