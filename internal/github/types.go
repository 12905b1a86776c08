package github

import "encoding/json"

// actor пользователь в ответах gh
type actor struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

// pullRequest элемент ответа gh pr list
type pullRequest struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Author    actor  `json:"author"`
	URL       string `json:"url"`
	IsDraft   bool   `json:"isDraft"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// reviewEntry одно ревью из gh pr view --json reviews
type reviewEntry struct {
	Author      *actor `json:"author"`
	State       string `json:"state"`
	SubmittedAt string `json:"submittedAt"`
}

// reviewRequest запрошенный ревьюер: пользователь или команда
type reviewRequest struct {
	TypeName string `json:"__typename"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// pullRequestDetail ответ gh pr view --json reviews,reviewRequests,assignees
type pullRequestDetail struct {
	Reviews        []reviewEntry   `json:"reviews"`
	ReviewRequests []reviewRequest `json:"reviewRequests"`
	Assignees      []actor         `json:"assignees"`
}

// graphQLResponse общий конверт ответа gh api graphql
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"errors"`
}

type fieldRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fieldValueNode struct {
	TypeName    string    `json:"__typename"`
	Field       *fieldRef `json:"field"`
	Text        string    `json:"text"`
	Date        string    `json:"date"`
	Name        string    `json:"name"`
	OptionID    string    `json:"optionId"`
	Title       string    `json:"title"`
	IterationID string    `json:"iterationId"`
}

type projectItemNode struct {
	ID      string `json:"id"`
	Project struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"project"`
	FieldValues struct {
		Nodes []fieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
}

type projectItemConnection struct {
	Nodes []projectItemNode `json:"nodes"`
}

type projectItemsData struct {
	Node *struct {
		ProjectItems projectItemConnection `json:"projectItems"`
	} `json:"node"`
}

type linkedIssueData struct {
	Node *struct {
		ClosingIssuesReferences struct {
			Nodes []struct {
				ID        string `json:"id"`
				Number    int    `json:"number"`
				Title     string `json:"title"`
				URL       string `json:"url"`
				Assignees struct {
					Nodes []actor `json:"nodes"`
				} `json:"assignees"`
				ProjectItems projectItemConnection `json:"projectItems"`
			} `json:"nodes"`
		} `json:"closingIssuesReferences"`
	} `json:"node"`
}

type projectFieldsData struct {
	Node *struct {
		Fields struct {
			Nodes []struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				DataType string `json:"dataType"`
			} `json:"nodes"`
		} `json:"fields"`
	} `json:"node"`
}

type iterationNode struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
}

type fieldChoicesData struct {
	Node *struct {
		Options []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"options"`
		Configuration *struct {
			Iterations          []iterationNode `json:"iterations"`
			CompletedIterations []iterationNode `json:"completedIterations"`
		} `json:"configuration"`
	} `json:"node"`
}
