package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrRoleUnresolvable means the configured guild or role cannot be found.
	// It is an operator problem, not something the member can fix.
	ErrRoleUnresolvable = errors.New("authorization role is not resolvable")
	ErrMemberNotFound   = errors.New("member is not in the guild")
)

const defaultRoleCacheTTL = 5 * time.Minute

// discordSession is the subset of *discordgo.Session used by DiscordRoleProvider.
type discordSession interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// DiscordRoleProvider reads and grants one guild role over the Discord REST API.
type DiscordRoleProvider struct {
	session discordSession
	guildID string
	roleID  string

	roleCacheTTL time.Duration

	mu             sync.Mutex
	roleResolvedAt time.Time
}

// NewDiscordRoleProvider creates a provider authenticated with a bot token.
func NewDiscordRoleProvider(botToken, guildID, roleID string) (*DiscordRoleProvider, error) {
	botToken = strings.TrimSpace(botToken)
	if botToken == "" {
		return nil, errors.New("missing discord bot token")
	}

	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return newDiscordRoleProvider(session, guildID, roleID), nil
}

func newDiscordRoleProvider(session discordSession, guildID, roleID string) *DiscordRoleProvider {
	return &DiscordRoleProvider{
		session:      session,
		guildID:      strings.TrimSpace(guildID),
		roleID:       strings.TrimSpace(roleID),
		roleCacheTTL: defaultRoleCacheTTL,
	}
}

// HasRole reports whether the member currently holds the configured role.
func (p *DiscordRoleProvider) HasRole(ctx context.Context, userID string) (bool, error) {
	if err := p.resolveRole(ctx); err != nil {
		return false, err
	}

	member, err := p.session.GuildMember(p.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return false, translateDiscordError(err)
	}

	return slices.Contains(member.Roles, p.roleID), nil
}

// GrantRole adds the configured role to the member. Adding a held role is a no-op on Discord's side.
func (p *DiscordRoleProvider) GrantRole(ctx context.Context, userID string) error {
	if p.guildID == "" || p.roleID == "" {
		return ErrRoleUnresolvable
	}

	if err := p.session.GuildMemberRoleAdd(p.guildID, userID, p.roleID, discordgo.WithContext(ctx)); err != nil {
		return translateDiscordError(err)
	}

	return nil
}

// resolveRole checks that the role exists in the guild, caching a positive answer.
func (p *DiscordRoleProvider) resolveRole(ctx context.Context) error {
	if p.guildID == "" || p.roleID == "" {
		return ErrRoleUnresolvable
	}

	p.mu.Lock()
	fresh := !p.roleResolvedAt.IsZero() && time.Since(p.roleResolvedAt) < p.roleCacheTTL
	p.mu.Unlock()
	if fresh {
		return nil
	}

	roles, err := p.session.GuildRoles(p.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return translateDiscordError(err)
	}

	found := slices.ContainsFunc(roles, func(r *discordgo.Role) bool {
		return r != nil && r.ID == p.roleID
	})
	if !found {
		return ErrRoleUnresolvable
	}

	p.mu.Lock()
	p.roleResolvedAt = time.Now()
	p.mu.Unlock()

	return nil
}

func translateDiscordError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return err
	}

	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeUnknownRole:
		return fmt.Errorf("%w: %s", ErrRoleUnresolvable, restErr.Message.Message)
	case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
		return fmt.Errorf("%w: %s", ErrMemberNotFound, restErr.Message.Message)
	default:
		return err
	}
}
