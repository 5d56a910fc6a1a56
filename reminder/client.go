package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reminder-board/entity"

	"golang.org/x/net/html"
)

// Client talks to the board server the same way the page script does: it
// reads the rendered list fragment and calls the delete endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

func (c *Client) Tasks(ctx context.Context) ([]entity.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/get-tasks", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get tasks: server returned %d", resp.StatusCode)
	}
	return ParseTaskList(resp.Body)
}

type statusBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/delete-task/%d", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 == 2 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	var body statusBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		return fmt.Errorf("delete task %d: %s", id, body.Message)
	}
	return fmt.Errorf("delete task %d: server returned %d", id, resp.StatusCode)
}

// ParseTaskList reads the tasks out of rendered markup using the
// data-task-id and data-task-time attributes. Cards missing either are skipped.
func ParseTaskList(r io.Reader) ([]entity.Task, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	tasks := []entity.Task{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			idStr, hasID := attr(n, "data-task-id")
			tod, hasTime := attr(n, "data-task-time")
			if hasID && hasTime {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil && tod != "" {
					tasks = append(tasks, entity.Task{ID: id, Text: cardTitle(n), Time: tod})
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return tasks, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func cardTitle(card *html.Node) string {
	var title *html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		for child := n.FirstChild; child != nil && title == nil; child = child.NextSibling {
			if child.Type == html.ElementNode && hasClass(child, "card-title") {
				title = child
				return
			}
			find(child)
		}
	}
	find(card)
	if title == nil {
		return "Unknown Task"
	}
	var sb strings.Builder
	var text func(n *html.Node)
	text = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			text(child)
		}
	}
	text(title)
	return strings.TrimSpace(sb.String())
}
