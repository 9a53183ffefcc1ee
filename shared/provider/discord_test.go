package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeSession struct {
	roles      []*discordgo.Role
	rolesErr   error
	rolesCalls int

	members   map[string]*discordgo.Member
	memberErr error

	addErr error
	added  []string
}

func (f *fakeSession) GuildMember(_ string, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	m, ok := f.members[userID]
	if !ok {
		return nil, &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember, Message: "Unknown Member"}}
	}
	return m, nil
}

func (f *fakeSession) GuildRoles(_ string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.rolesCalls++
	return f.roles, f.rolesErr
}

func (f *fakeSession) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, userID+":"+roleID)
	return nil
}

func TestHasRole(t *testing.T) {
	session := &fakeSession{
		roles: []*discordgo.Role{{ID: "other"}, {ID: "linked"}},
		members: map[string]*discordgo.Member{
			"with":    {Roles: []string{"other", "linked"}},
			"without": {Roles: []string{"other"}},
		},
	}
	p := newDiscordRoleProvider(session, "guild", "linked")

	has, err := p.HasRole(context.Background(), "with")
	if err != nil || !has {
		t.Fatalf("HasRole(with) = %v, %v; want true, nil", has, err)
	}
	has, err = p.HasRole(context.Background(), "without")
	if err != nil || has {
		t.Fatalf("HasRole(without) = %v, %v; want false, nil", has, err)
	}
	if _, err := p.HasRole(context.Background(), "stranger"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("HasRole(stranger) error = %v, want ErrMemberNotFound", err)
	}
	if session.rolesCalls != 1 {
		t.Fatalf("GuildRoles called %d times, want 1 (cached)", session.rolesCalls)
	}
}

func TestHasRoleUnresolvable(t *testing.T) {
	cases := []struct {
		name    string
		guildID string
		roleID  string
		session *fakeSession
	}{
		{"missing_role_config", "guild", "", &fakeSession{}},
		{"missing_guild_config", "", "linked", &fakeSession{}},
		{"role_not_in_guild", "guild", "linked", &fakeSession{roles: []*discordgo.Role{{ID: "other"}}}},
		{"unknown_guild", "guild", "linked", &fakeSession{rolesErr: &discordgo.RESTError{
			Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownGuild, Message: "Unknown Guild"},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newDiscordRoleProvider(tc.session, tc.guildID, tc.roleID)
			if _, err := p.HasRole(context.Background(), "user"); !errors.Is(err, ErrRoleUnresolvable) {
				t.Fatalf("HasRole error = %v, want ErrRoleUnresolvable", err)
			}
		})
	}
}

func TestHasRoleTransientError(t *testing.T) {
	boom := errors.New("connection reset")
	p := newDiscordRoleProvider(&fakeSession{rolesErr: boom}, "guild", "linked")
	_, err := p.HasRole(context.Background(), "user")
	if !errors.Is(err, boom) {
		t.Fatalf("HasRole error = %v, want %v", err, boom)
	}
	if errors.Is(err, ErrRoleUnresolvable) {
		t.Fatal("transient error must not be reported as unresolvable")
	}
}

func TestGrantRole(t *testing.T) {
	session := &fakeSession{}
	p := newDiscordRoleProvider(session, "guild", "linked")

	if err := p.GrantRole(context.Background(), "user"); err != nil {
		t.Fatalf("GrantRole: %v", err)
	}
	if len(session.added) != 1 || session.added[0] != "user:linked" {
		t.Fatalf("added = %v", session.added)
	}

	session.addErr = &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownRole, Message: "Unknown Role"}}
	if err := p.GrantRole(context.Background(), "user"); !errors.Is(err, ErrRoleUnresolvable) {
		t.Fatalf("GrantRole error = %v, want ErrRoleUnresolvable", err)
	}

	unconfigured := newDiscordRoleProvider(&fakeSession{}, "guild", " ")
	if err := unconfigured.GrantRole(context.Background(), "user"); !errors.Is(err, ErrRoleUnresolvable) {
		t.Fatalf("GrantRole error = %v, want ErrRoleUnresolvable", err)
	}
}
