package linear

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
)

// Ticket identifies an issue created in Linear.
type Ticket struct {
	ID         string
	Identifier string
	URL        string
}

// TicketInput describes an issue to file. ScopeID is resolved through the
// configured scope map; Labels are label names, unknown names are skipped.
type TicketInput struct {
	ScopeID     string
	Type        vo.RequestType
	Title       string
	Description string
	Labels      []string
	// Priority follows Linear's scale: 0 none, 1 urgent ... 4 low.
	Priority int
}

const issueCreateMutation = `
mutation IssueCreate($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue { id identifier url }
  }
}`

const issueLabelsQuery = `
query IssueLabels($id: String!) {
  issue(id: $id) {
    id
    team { id }
    labels { nodes { id name } }
  }
}`

const issueUpdateLabelsMutation = `
mutation IssueUpdate($id: String!, $labelIds: [String!]!) {
  issueUpdate(id: $id, input: { labelIds: $labelIds }) {
    success
  }
}`

const issueCommentsQuery = `
query IssueComments($id: String!) {
  issue(id: $id) {
    comments(first: 50) {
      nodes { id body createdAt }
    }
  }
}`

const teamLabelsQuery = `
query TeamLabels($id: String!, $first: Int!) {
  team(id: $id) {
    labels(first: $first) { nodes { id name } }
  }
}`

type labelNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateTicket files a new issue. It is attempted exactly once.
func (c *Client) CreateTicket(ctx context.Context, in TicketInput) (*Ticket, error) {
	teamID, projectID, err := c.resolveScope(in.ScopeID)
	if err != nil {
		return nil, err
	}

	input := map[string]any{
		"teamId":      teamID,
		"title":       in.Title,
		"description": in.Description,
	}
	if projectID != "" {
		input["projectId"] = projectID
	}
	if in.Priority > 0 {
		input["priority"] = in.Priority
	}

	names := append([]string{}, in.Labels...)
	if typeLabel := c.typeLabel(in.Type); typeLabel != "" {
		names = append(names, typeLabel)
	}
	if len(names) > 0 {
		ids, err := c.labelIDs(ctx, teamID, names)
		if err != nil {
			c.logger.Warnw("failed to resolve labels, creating issue without them",
				"team_id", teamID,
				"error", err,
			)
		} else if len(ids) > 0 {
			input["labelIds"] = ids
		}
	}

	var data struct {
		IssueCreate struct {
			Success bool `json:"success"`
			Issue   *struct {
				ID         string `json:"id"`
				Identifier string `json:"identifier"`
				URL        string `json:"url"`
			} `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.do(ctx, issueCreateMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if !data.IssueCreate.Success || data.IssueCreate.Issue == nil {
		return nil, fmt.Errorf("linear: issueCreate was not successful")
	}

	issue := data.IssueCreate.Issue
	c.logger.Infow("linear issue created",
		"issue_id", issue.ID,
		"identifier", issue.Identifier,
		"team_id", teamID,
	)
	return &Ticket{ID: issue.ID, Identifier: issue.Identifier, URL: issue.URL}, nil
}

// FetchLatestComment returns the body of the newest comment on the issue,
// or nil when it has none.
func (c *Client) FetchLatestComment(ctx context.Context, ticketID string) (*string, error) {
	var data struct {
		Issue *struct {
			Comments struct {
				Nodes []struct {
					ID        string    `json:"id"`
					Body      string    `json:"body"`
					CreatedAt time.Time `json:"createdAt"`
				} `json:"nodes"`
			} `json:"comments"`
		} `json:"issue"`
	}
	if err := c.do(ctx, issueCommentsQuery, map[string]any{"id": ticketID}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil || len(data.Issue.Comments.Nodes) == 0 {
		return nil, nil
	}

	latest := data.Issue.Comments.Nodes[0]
	for _, n := range data.Issue.Comments.Nodes[1:] {
		if n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	if strings.TrimSpace(latest.Body) == "" {
		return nil, nil
	}
	body := latest.Body
	return &body, nil
}

// AddDefaultLabel attaches the configured default label unless the issue
// already carries it.
func (c *Client) AddDefaultLabel(ctx context.Context, ticketID string) error {
	name := strings.TrimSpace(c.cfg.DefaultLabel)
	if name == "" {
		return nil
	}

	var data struct {
		Issue *struct {
			ID   string `json:"id"`
			Team struct {
				ID string `json:"id"`
			} `json:"team"`
			Labels struct {
				Nodes []labelNode `json:"nodes"`
			} `json:"labels"`
		} `json:"issue"`
	}
	if err := c.do(ctx, issueLabelsQuery, map[string]any{"id": ticketID}, &data); err != nil {
		return err
	}
	if data.Issue == nil {
		return fmt.Errorf("linear: issue %s not found", ticketID)
	}

	want := foldName(name)
	existing := make([]string, 0, len(data.Issue.Labels.Nodes)+1)
	for _, l := range data.Issue.Labels.Nodes {
		if foldName(l.Name) == want {
			return nil
		}
		existing = append(existing, l.ID)
	}

	ids, err := c.labelIDs(ctx, data.Issue.Team.ID, []string{name})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: %q", ErrLabelNotFound, name)
	}

	var updated struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	vars := map[string]any{"id": ticketID, "labelIds": append(existing, ids...)}
	if err := c.do(ctx, issueUpdateLabelsMutation, vars, &updated); err != nil {
		return err
	}
	if !updated.IssueUpdate.Success {
		return fmt.Errorf("linear: issueUpdate was not successful")
	}
	return nil
}

func (c *Client) resolveScope(scopeID string) (string, string, error) {
	scopeID = strings.TrimSpace(scopeID)
	if scopeID == "" {
		return "", "", fmt.Errorf("linear: scope id is required")
	}
	scope, ok := c.cfg.Scopes[scopeID]
	if !ok {
		// Map keys loaded through viper are lower-cased.
		scope, ok = c.cfg.Scopes[strings.ToLower(scopeID)]
	}
	if !ok {
		return scopeID, "", nil
	}
	if scope.TeamID == "" {
		return "", "", fmt.Errorf("linear: scope %q has no team_id", scopeID)
	}
	return scope.TeamID, scope.ProjectID, nil
}

func (c *Client) typeLabel(t vo.RequestType) string {
	if t == "" {
		return ""
	}
	return c.cfg.TypeLabels[t.String()]
}

// labelIDs resolves label names against the team's labels. Names that do not
// exist are dropped.
func (c *Client) labelIDs(ctx context.Context, teamID string, names []string) ([]string, error) {
	byName, err := c.teamLabels(ctx, teamID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, ok := byName[foldName(n)]
		if !ok {
			c.logger.Debugw("skipping unknown linear label", "team_id", teamID, "label", n)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Client) teamLabels(ctx context.Context, teamID string) (map[string]string, error) {
	c.mu.RLock()
	cached, ok := c.labels[teamID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.labelGroup.Do(teamID, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.labels[teamID]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		var data struct {
			Team *struct {
				Labels struct {
					Nodes []labelNode `json:"nodes"`
				} `json:"labels"`
			} `json:"team"`
		}
		vars := map[string]any{"id": teamID, "first": labelPageSize}
		if err := c.do(ctx, teamLabelsQuery, vars, &data); err != nil {
			return nil, err
		}
		if data.Team == nil {
			return nil, fmt.Errorf("linear: team %s not found", teamID)
		}

		byName := make(map[string]string, len(data.Team.Labels.Nodes))
		for _, l := range data.Team.Labels.Nodes {
			byName[foldName(l.Name)] = l.ID
		}

		c.mu.Lock()
		c.labels[teamID] = byName
		c.mu.Unlock()
		return byName, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// IsLabelNotFound reports whether err came from a missing label.
func IsLabelNotFound(err error) bool {
	return errors.Is(err, ErrLabelNotFound)
}
