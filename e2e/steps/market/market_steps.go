package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	AuthedRequest(alias, method, path string, body any) error
	StatusCode() int
	GetResponseField(field string) (any, error)
	DecodeResponse(dst any) error
	Email(alias string) string
	SetToken(alias, token string)
	Save(key, value string)
	Saved(key string) string
}

// RegisterSteps registers registration, provisioning and transfer steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &marketSteps{tc: tc, provisionTimeout: 15 * time.Second}

	ctx.Step(`^a coach "([^"]*)" registers with team "([^"]*)"$`, steps.register)
	ctx.Step(`^coach "([^"]*)" registers again$`, steps.registerAgain)
	ctx.Step(`^coach "([^"]*)" has a provisioned team$`, steps.waitForTeam)
	ctx.Step(`^coach "([^"]*)" lists their first player for (\d+)$`, steps.listFirstPlayer)
	ctx.Step(`^coach "([^"]*)" buys the listed player$`, steps.buyListedPlayer)
	ctx.Step(`^coach "([^"]*)" should have (\d+) players$`, steps.shouldHavePlayers)
	ctx.Step(`^coach "([^"]*)" should have (\d+) unread notifications?$`, steps.shouldHaveUnread)
}

type marketSteps struct {
	tc               TestContext
	provisionTimeout time.Duration
}

type team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players []struct {
		ID string `json:"id"`
	} `json:"players"`
}

func (s *marketSteps) register(ctx context.Context, alias, teamName string) error {
	if err := s.tc.POST("/auth/register", map[string]string{
		"email":    s.tc.Email(alias),
		"teamName": teamName,
	}); err != nil {
		return err
	}
	if s.tc.StatusCode() != http.StatusCreated {
		return fmt.Errorf("register %s: status %d", alias, s.tc.StatusCode())
	}
	token, err := s.tc.GetResponseField("accessToken")
	if err != nil {
		return err
	}
	s.tc.SetToken(alias, token.(string))
	return nil
}

func (s *marketSteps) registerAgain(ctx context.Context, alias string) error {
	return s.tc.POST("/auth/register", map[string]string{"email": s.tc.Email(alias)})
}

func (s *marketSteps) myTeam(alias string) (*team, error) {
	if err := s.tc.AuthedRequest(alias, http.MethodGet, "/team", nil); err != nil {
		return nil, err
	}
	if s.tc.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /team for %s: status %d", alias, s.tc.StatusCode())
	}
	var t team
	if err := s.tc.DecodeResponse(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *marketSteps) waitForTeam(ctx context.Context, alias string) error {
	deadline := time.Now().Add(s.provisionTimeout)
	for {
		_, err := s.myTeam(alias)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("team for %s not provisioned: %w", alias, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func (s *marketSteps) listFirstPlayer(ctx context.Context, alias string, price int) error {
	t, err := s.myTeam(alias)
	if err != nil {
		return err
	}
	if len(t.Players) == 0 {
		return errors.New("team has no players")
	}
	playerID := t.Players[0].ID
	s.tc.Save("listedPlayer", playerID)
	return s.tc.AuthedRequest(alias, http.MethodPost, "/transfer/list", map[string]any{
		"playerId": playerID,
		"price":    price,
	})
}

func (s *marketSteps) buyListedPlayer(ctx context.Context, alias string) error {
	playerID := s.tc.Saved("listedPlayer")
	if playerID == "" {
		return errors.New("no player has been listed")
	}
	return s.tc.AuthedRequest(alias, http.MethodPost, "/transfer/buy", map[string]any{"playerId": playerID})
}

func (s *marketSteps) shouldHavePlayers(ctx context.Context, alias string, expected int) error {
	t, err := s.myTeam(alias)
	if err != nil {
		return err
	}
	if len(t.Players) != expected {
		return fmt.Errorf("expected %d players for %s, got %d", expected, alias, len(t.Players))
	}
	return nil
}

func (s *marketSteps) shouldHaveUnread(ctx context.Context, alias string, expected int) error {
	if err := s.tc.AuthedRequest(alias, http.MethodGet, "/notifications?unread=true", nil); err != nil {
		return err
	}
	count, err := s.tc.GetResponseField("count")
	if err != nil {
		return err
	}
	if fmt.Sprint(count) != fmt.Sprint(expected) {
		return fmt.Errorf("expected %d unread notifications for %s, got %v", expected, alias, count)
	}
	return nil
}
