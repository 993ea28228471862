package services

import (
	"errors"
	"testing"

	"fithub/common"
	"fithub/models"
)

func TestRegisterCreatesAccountAndSettings(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.svc.Users.Register("alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	acc := env.account(t, user.ID)
	if acc.TotalExp != 0 || acc.Level != 1 {
		t.Errorf("account = %+v", acc)
	}
	var st models.UserSettings
	if err := env.db.Where("user_id = ?", user.ID).First(&st).Error; err != nil {
		t.Fatalf("settings: %v", err)
	}
	if st.GraceDaysAllowed != 1 {
		t.Errorf("grace = %d", st.GraceDaysAllowed)
	}

	tests := []struct {
		name                      string
		username, email, password string
		check                     func(error) bool
	}{
		{"duplicate username", "alice", "", "secret123", common.IsConflict},
		{"duplicate email", "alice2", "alice@example.com", "secret123", common.IsConflict},
		{"short password", "bob", "", "123", common.IsValidation},
		{"missing username", " ", "", "secret123", common.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Users.Register(tt.username, tt.email, tt.password)
			if !tt.check(err) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "carol")

	user, err := env.svc.Users.Authenticate("carol", "secret123")
	if err != nil || user.ID != uid || user.LastLogin == nil {
		t.Fatalf("authenticate: %+v %v", user, err)
	}
	if _, err := env.svc.Users.Authenticate("carol", "wrong"); !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := env.svc.Users.Authenticate("nobody", "secret123"); !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("unknown user: err = %v", err)
	}
	if _, err := env.svc.Users.AuthenticateAdmin("carol", "secret123"); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("non-admin: err = %v", err)
	}
}

func TestProfileIncludesProgression(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "dave")
	env.setTotalExp(t, uid, 2020)

	p, err := env.svc.Users.Profile(uid)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Username != "dave" || p.TotalExp != 2020 || p.Level != 6 {
		t.Errorf("profile = %+v", p)
	}
	if _, err := env.svc.Users.Profile(9999); !common.IsNotFound(err) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestAccountSummary(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "erin")
	env.setTotalExp(t, uid, 2210)

	s, err := env.svc.Accounts.Summary(uid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// Level 6 spans 1900..2520.
	if s.Level != 6 || s.RequiredExpForNext != 2520 || s.ExpToNextLevel != 310 || s.LevelProgress != 0.5 {
		t.Errorf("summary = %+v", s)
	}
	if _, err := env.svc.Accounts.Summary(9999); !common.IsNotFound(err) {
		t.Errorf("unknown user: err = %v", err)
	}
}
