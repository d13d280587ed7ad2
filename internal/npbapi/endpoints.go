package npbapi

import (
	"context"
	"net/url"

	"github.com/blockedby/npb-dashboard/internal/models"
)

// Statistics fetches the summary counts.
func (c *Client) Statistics(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	if err := c.getJSON(ctx, "/statistics", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Teams fetches the team directory of both leagues.
func (c *Client) Teams(ctx context.Context) (*models.Teams, error) {
	var teams models.Teams
	if err := c.getJSON(ctx, "/teams", &teams); err != nil {
		return nil, err
	}
	return &teams, nil
}

// TeamsByLeague fetches the teams of one league.
func (c *Client) TeamsByLeague(ctx context.Context, league models.League) ([]models.Team, error) {
	var teams []models.Team
	if err := c.getJSON(ctx, "/teams/"+url.PathEscape(string(league)), &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// TeamsLastUpdated fetches the freshness of the team directory.
func (c *Client) TeamsLastUpdated(ctx context.Context) (models.Timestamp, error) {
	var lu models.LastUpdated
	if err := c.getJSON(ctx, "/teams/last_updated", &lu); err != nil {
		return models.Timestamp{}, err
	}
	return lu.LastUpdated, nil
}

// Players fetches the roster of a team as generic records.
func (c *Client) Players(ctx context.Context, teamID string) (models.RecordCollection, error) {
	var players models.RecordCollection
	if err := c.getJSON(ctx, "/players/"+url.PathEscape(teamID), &players); err != nil {
		return nil, err
	}
	return players, nil
}

// Player fetches a single player record.
func (c *Client) Player(ctx context.Context, playerID string) (*models.Record, error) {
	var player models.Record
	if err := c.getJSON(ctx, "/player/"+url.PathEscape(playerID), &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Stats fetches the table or leaderboard of a selection.
func (c *Client) Stats(ctx context.Context, sel models.StatsSelection) (*models.StatsResult, error) {
	result := &models.StatsResult{Selection: sel}
	if sel.IsLeaderboard() {
		if err := c.getJSON(ctx, sel.Path(), &result.Categories); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := c.getJSON(ctx, sel.Path(), &result.Records); err != nil {
		return nil, err
	}
	return result, nil
}

// LastUpdated fetches the freshness of the stats data.
func (c *Client) LastUpdated(ctx context.Context) (models.Timestamp, error) {
	var lu models.LastUpdated
	if err := c.getJSON(ctx, "/last_updated", &lu); err != nil {
		return models.Timestamp{}, err
	}
	return lu.LastUpdated, nil
}
