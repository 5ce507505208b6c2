package linear

import "context"

const defaultProjectPageSize = 25

// Project is a summary row of a Linear project.
type Project struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       *string `json:"slugId"`
	State      *string `json:"state"`
	TargetDate *string `json:"targetDate"`
	URL        *string `json:"url"`
}

const listProjectsQuery = `
query Projects($first: Int!) {
  projects(first: $first, orderBy: updatedAt) {
    nodes { id name slugId state targetDate url }
  }
}`

// ListProjects returns up to first projects, most recently updated first.
func (c *Client) ListProjects(ctx context.Context, first int) ([]Project, error) {
	if first <= 0 {
		first = defaultProjectPageSize
	}

	var data struct {
		Projects *struct {
			Nodes []Project `json:"nodes"`
		} `json:"projects"`
	}
	if err := c.do(ctx, listProjectsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, err
	}
	if data.Projects == nil {
		return nil, nil
	}
	return data.Projects.Nodes, nil
}
