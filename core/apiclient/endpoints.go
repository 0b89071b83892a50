package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"match-sync/core/retry"

	"go.uber.org/zap"
)

type validator interface {
	Validate() error
}

func decodeList[T validator](method, path string, raw []byte) ([]T, error) {
	var items []T
	if err := decode(method, path, raw, &items); err != nil {
		return nil, err
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("decode %s %s: item %d: %w", method, path, i, err)
		}
	}
	return items, nil
}

func decodeOne[T validator](method, path string, raw []byte) (*T, error) {
	var item T
	if err := decode(method, path, raw, &item); err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return &item, nil
}

func list[T validator](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	raw, err := c.Request(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return nil, err
	}
	return decodeList[T](http.MethodGet, path, raw)
}

func send[T validator](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	raw, err := c.Request(ctx, method, path, body, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[T](method, path, raw)
}

// ListTeams returns every team.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	return list[Team](ctx, c, "/teams", nil)
}

// CreateTeam creates a team.
func (c *Client) CreateTeam(ctx context.Context, in TeamCreate) (*Team, error) {
	return send[Team](ctx, c, http.MethodPost, "/teams", in)
}

// ListAgeGroups returns every age group.
func (c *Client) ListAgeGroups(ctx context.Context) ([]AgeGroup, error) {
	return list[AgeGroup](ctx, c, "/age-groups", nil)
}

// CreateAgeGroup creates an age group.
func (c *Client) CreateAgeGroup(ctx context.Context, name string) (*AgeGroup, error) {
	return send[AgeGroup](ctx, c, http.MethodPost, "/age-groups", NameCreate{Name: name})
}

// ListDivisions returns every division.
func (c *Client) ListDivisions(ctx context.Context) ([]Division, error) {
	return list[Division](ctx, c, "/divisions", nil)
}

// CreateDivision creates a division.
func (c *Client) CreateDivision(ctx context.Context, name string) (*Division, error) {
	return send[Division](ctx, c, http.MethodPost, "/divisions", NameCreate{Name: name})
}

// ListSeasons returns every season.
func (c *Client) ListSeasons(ctx context.Context) ([]Season, error) {
	return list[Season](ctx, c, "/seasons", nil)
}

// ListMatchTypes returns every match type.
func (c *Client) ListMatchTypes(ctx context.Context) ([]MatchType, error) {
	return list[MatchType](ctx, c, "/match-types", nil)
}

// ListMatches returns matches filtered by date window, age group and division.
// Zero values are omitted from the query. Rows that fail validation are
// skipped with a warning so one malformed record does not hide the rest.
func (c *Client) ListMatches(ctx context.Context, q MatchQuery) ([]Match, error) {
	values := url.Values{}
	if q.StartDate != "" {
		values.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		values.Set("end_date", q.EndDate)
	}
	if q.AgeGroupID > 0 {
		values.Set("age_group_id", strconv.FormatInt(q.AgeGroupID, 10))
	}
	if q.DivisionID > 0 {
		values.Set("division_id", strconv.FormatInt(q.DivisionID, 10))
	}
	raw, err := c.Request(ctx, http.MethodGet, "/matches", nil, values)
	if err != nil {
		return nil, err
	}
	var items []Match
	if err := decode(http.MethodGet, "/matches", raw, &items); err != nil {
		return nil, err
	}
	valid := items[:0]
	for i, m := range items {
		if err := m.Validate(); err != nil {
			c.logger.Warn("Skipping invalid remote match",
				zap.Int("item", i),
				zap.Int64("match_id", m.ID),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, m)
	}
	return valid, nil
}

// CreateMatch creates a match and returns it with its remote ID.
func (c *Client) CreateMatch(ctx context.Context, in MatchCreate) (*Match, error) {
	return send[Match](ctx, c, http.MethodPost, "/matches", in)
}

// UpdateMatchScore patches only the score fields of a match.
func (c *Client) UpdateMatchScore(ctx context.Context, id int64, patch ScorePatch) (*Match, error) {
	return send[Match](ctx, c, http.MethodPatch, "/matches/"+strconv.FormatInt(id, 10), patch)
}

// Health calls the unauthenticated health endpoint. full selects /health/full.
func (c *Client) Health(ctx context.Context, full bool) (*Health, error) {
	path := "/health"
	if full {
		path = "/health/full"
	}
	raw, err := c.execute(ctx, http.MethodGet, path, nil, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeOne[Health](http.MethodGet, path, raw)
}

// SubmitMatch queues a match for asynchronous ingestion.
func (c *Client) SubmitMatch(ctx context.Context, in MatchSubmission) (*SubmitResponse, error) {
	return send[SubmitResponse](ctx, c, http.MethodPost, "/matches/submit", in)
}

// TaskStatus returns the state of an asynchronous submission.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	path := "/matches/task/" + url.PathEscape(taskID)
	var status TaskStatus
	if err := c.RequestJSON(ctx, http.MethodGet, path, nil, nil, &status); err != nil {
		return nil, err
	}
	if status.TaskID == "" {
		status.TaskID = taskID
	}
	return &status, nil
}

// ErrTaskPending is returned by WaitForTask when the task is still running
// after the poll budget is spent.
var ErrTaskPending = errors.New("task still pending")

// WaitForTask polls TaskStatus until the task is ready or the poll policy is
// exhausted.
func (c *Client) WaitForTask(ctx context.Context, taskID string, poll retry.Policy) (*TaskStatus, error) {
	op := func() (*TaskStatus, error) {
		status, err := c.TaskStatus(ctx, taskID)
		if err != nil {
			if apiErr, ok := AsAPIError(err); ok && apiErr.IsClientError() {
				return nil, retry.Permanent(err)
			}
			if IsConfigurationError(err) {
				return nil, retry.Permanent(err)
			}
			return nil, err
		}
		if !status.Ready {
			return status, ErrTaskPending
		}
		return status, nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("Waiting for task",
			zap.String("task_id", taskID),
			zap.Duration("next_poll", wait),
			zap.Error(err),
		)
	}
	return retry.Do(ctx, poll, op, notify)
}
