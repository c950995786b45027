package httpserver

import "testing"

func TestValidateCreateUserRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req: CreateUserRequest{
				Username: "studyfan",
				Email:    "study@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: false,
		},
		{
			name: "missing username",
			req: CreateUserRequest{
				Email:    "study@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: true,
		},
		{
			name: "username too short",
			req: CreateUserRequest{
				Username: "a",
				Email:    "study@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: true,
		},
		{
			name: "username too long",
			req: CreateUserRequest{
				Username: "abcdefghijklmnopqrstuvwxyz123",
				Email:    "study@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: true,
		},
		{
			name: "missing email",
			req: CreateUserRequest{
				Username: "studyfan",
				Password: "Sup3rSecret!",
			},
			wantErr: true,
		},
		{
			name: "malformed email",
			req: CreateUserRequest{
				Username: "studyfan",
				Email:    "not-an-email",
				Password: "Sup3rSecret!",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCreateUserRequest(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCreateUserRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"valid password", "Sup3rSecret!", false},
		{"too short", "S3c!", true},
		{"no uppercase", "sup3rsecret!", true},
		{"no lowercase", "SUP3RSECRET!", true},
		{"no digit", "SuperSecret!", true},
		{"no special", "Sup3rSecret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.pw)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePassword(%q) error = %v, wantErr %v", tt.pw, err, tt.wantErr)
			}
		})
	}
}
