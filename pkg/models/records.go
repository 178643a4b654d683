package models

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusComplete   TaskStatus = "complete"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
	RoleViewer MemberRole = "viewer"
)

// User is the denormalized author profile carried on comments and members.
// It is not a synchronized collection of its own.
type User struct {
	ID        ID        `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is a kanban board with its own tasks, notes and members.
type Project struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      ID        `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) RecordID() ID             { return p.ID }
func (p *Project) RecordKind() Kind         { return KindProject }
func (p *Project) CreatedAtTime() time.Time { return p.CreatedAt }
func (p *Project) UpdatedAtTime() time.Time { return p.UpdatedAt }

func (p *Project) Clone() Record {
	c := *p
	return &c
}

func (p *Project) Stamped(id ID, user ID, now time.Time) Record {
	c := *p
	c.ID = id
	c.UserID = user
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c
}

func (p *Project) Merge(fields map[string]any, now time.Time) Record {
	c := *p
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = asString(v)
		case "description":
			c.Description = asString(v)
		}
	}
	c.UpdatedAt = now
	return &c
}

func (p *Project) FilterValue(field string) (string, bool) {
	if field == "user_id" {
		return p.UserID.String(), true
	}
	return "", false
}

func (p *Project) ContentKey() string {
	return contentKey("project", p.Name, p.Description)
}

// Task is a card on a kanban board, ordered by Position within its status
// column.
type Task struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	Position    int        `json:"position"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ProjectID   ID         `json:"project_id"`
	UserID      ID         `json:"user_id"`
	AssigneeID  ID         `json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Task) RecordID() ID             { return t.ID }
func (t *Task) RecordKind() Kind         { return KindTask }
func (t *Task) CreatedAtTime() time.Time { return t.CreatedAt }
func (t *Task) UpdatedAtTime() time.Time { return t.UpdatedAt }

func (t *Task) Clone() Record {
	c := *t
	c.DueDate = cloneTimePtr(t.DueDate)
	return &c
}

func (t *Task) Stamped(id ID, user ID, now time.Time) Record {
	c := *t
	c.DueDate = cloneTimePtr(t.DueDate)
	c.ID = id
	c.UserID = user
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c
}

func (t *Task) Merge(fields map[string]any, now time.Time) Record {
	c := *t
	c.DueDate = cloneTimePtr(t.DueDate)
	for k, v := range fields {
		switch k {
		case "title":
			c.Title = asString(v)
		case "description":
			c.Description = asString(v)
		case "status":
			c.Status = TaskStatus(asString(v))
		case "priority":
			c.Priority = Priority(asString(v))
		case "position":
			c.Position = asInt(v)
		case "due_date":
			c.DueDate = asTimePtr(v)
		case "assignee_id":
			c.AssigneeID = asID(v)
		case "project_id":
			c.ProjectID = asID(v)
		}
	}
	c.UpdatedAt = now
	return &c
}

func (t *Task) FilterValue(field string) (string, bool) {
	switch field {
	case "project_id":
		return t.ProjectID.String(), true
	case "status":
		return string(t.Status), true
	}
	return "", false
}

func (t *Task) ContentKey() string {
	return contentKey("task", t.Title, t.ProjectID.String(), t.Description)
}

// TodoItem is a lightweight checklist entry, optionally scoped to a project.
type TodoItem struct {
	ID        ID         `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Position  int        `json:"position"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	UserID    ID         `json:"user_id"`
	ProjectID ID         `json:"project_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (t *TodoItem) RecordID() ID             { return t.ID }
func (t *TodoItem) RecordKind() Kind         { return KindTodo }
func (t *TodoItem) CreatedAtTime() time.Time { return t.CreatedAt }
func (t *TodoItem) UpdatedAtTime() time.Time { return t.UpdatedAt }

func (t *TodoItem) Clone() Record {
	c := *t
	c.DueDate = cloneTimePtr(t.DueDate)
	return &c
}

func (t *TodoItem) Stamped(id ID, user ID, now time.Time) Record {
	c := *t
	c.DueDate = cloneTimePtr(t.DueDate)
	c.ID = id
	c.UserID = user
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c
}

func (t *TodoItem) Merge(fields map[string]any, now time.Time) Record {
	c := *t
	c.DueDate = cloneTimePtr(t.DueDate)
	for k, v := range fields {
		switch k {
		case "text":
			c.Text = asString(v)
		case "completed":
			c.Completed = asBool(v)
		case "position":
			c.Position = asInt(v)
		case "due_date":
			c.DueDate = asTimePtr(v)
		case "project_id":
			c.ProjectID = asID(v)
		}
	}
	c.UpdatedAt = now
	return &c
}

func (t *TodoItem) FilterValue(field string) (string, bool) {
	if field == "project_id" {
		return t.ProjectID.String(), true
	}
	return "", false
}

func (t *TodoItem) ContentKey() string {
	return contentKey("todo", t.Text, t.ProjectID.String())
}

// Note is a free-form text note, optionally scoped to a project and
// archivable.
type Note struct {
	ID         ID        `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	IsArchived bool      `json:"is_archived"`
	UserID     ID        `json:"user_id"`
	ProjectID  ID        `json:"project_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (n *Note) RecordID() ID             { return n.ID }
func (n *Note) RecordKind() Kind         { return KindNote }
func (n *Note) CreatedAtTime() time.Time { return n.CreatedAt }
func (n *Note) UpdatedAtTime() time.Time { return n.UpdatedAt }

func (n *Note) Clone() Record {
	c := *n
	c.Tags = cloneStrings(n.Tags)
	return &c
}

func (n *Note) Stamped(id ID, user ID, now time.Time) Record {
	c := *n
	c.Tags = cloneStrings(n.Tags)
	c.ID = id
	c.UserID = user
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c
}

func (n *Note) Merge(fields map[string]any, now time.Time) Record {
	c := *n
	c.Tags = cloneStrings(n.Tags)
	for k, v := range fields {
		switch k {
		case "title":
			c.Title = asString(v)
		case "content":
			c.Content = asString(v)
		case "tags":
			c.Tags = asStrings(v)
		case "is_archived":
			c.IsArchived = asBool(v)
		case "project_id":
			c.ProjectID = asID(v)
		}
	}
	c.UpdatedAt = now
	return &c
}

func (n *Note) FilterValue(field string) (string, bool) {
	switch field {
	case "project_id":
		return n.ProjectID.String(), true
	case "is_archived":
		if n.IsArchived {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

func (n *Note) ContentKey() string {
	return contentKey("note", n.Title, n.ProjectID.String())
}

// Comment annotates either a task or a project, never both. ParentID links a
// reply to its thread root; Replies is transient, populated only by the tree
// projector and never persisted.
type Comment struct {
	ID         ID        `json:"id"`
	Content    string    `json:"content"`
	TaskID     ID        `json:"task_id,omitempty"`
	ProjectID  ID        `json:"project_id,omitempty"`
	ParentID   ID        `json:"parent_id,omitempty"`
	MentionIDs []string  `json:"mention_ids,omitempty"`
	UserID     ID        `json:"user_id"`
	User       *User     `json:"user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Replies is derived view state, see Threads.
	Replies []*Comment `json:"-"`
}

func (c *Comment) RecordID() ID             { return c.ID }
func (c *Comment) RecordKind() Kind         { return KindComment }
func (c *Comment) CreatedAtTime() time.Time { return c.CreatedAt }
func (c *Comment) UpdatedAtTime() time.Time { return c.UpdatedAt }

func (c *Comment) Clone() Record {
	cp := *c
	cp.MentionIDs = cloneStrings(c.MentionIDs)
	if c.User != nil {
		u := *c.User
		cp.User = &u
	}
	if c.Replies != nil {
		cp.Replies = make([]*Comment, len(c.Replies))
		for i, r := range c.Replies {
			cp.Replies[i] = r.Clone().(*Comment)
		}
	}
	return &cp
}

func (c *Comment) Stamped(id ID, user ID, now time.Time) Record {
	cp := c.Clone().(*Comment)
	cp.ID = id
	cp.UserID = user
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return cp
}

func (c *Comment) Merge(fields map[string]any, now time.Time) Record {
	cp := c.Clone().(*Comment)
	for k, v := range fields {
		switch k {
		case "content":
			cp.Content = asString(v)
		case "mention_ids":
			cp.MentionIDs = asStrings(v)
		}
	}
	cp.UpdatedAt = now
	return cp
}

func (c *Comment) FilterValue(field string) (string, bool) {
	switch field {
	case "task_id":
		return c.TaskID.String(), true
	case "project_id":
		return c.ProjectID.String(), true
	}
	return "", false
}

func (c *Comment) ContentKey() string {
	return contentKey("comment", c.Content, c.TaskID.String(), c.ProjectID.String(), c.ParentID.String())
}

// ProjectMember records a user's membership and role in a project.
type ProjectMember struct {
	ID        ID         `json:"id"`
	ProjectID ID         `json:"project_id"`
	UserID    ID         `json:"user_id"`
	Role      MemberRole `json:"role"`
	Status    string     `json:"status,omitempty"`
	InvitedBy ID         `json:"invited_by,omitempty"`
	JoinedAt  time.Time  `json:"joined_at"`
	User      *User      `json:"user,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (m *ProjectMember) RecordID() ID             { return m.ID }
func (m *ProjectMember) RecordKind() Kind         { return KindMember }
func (m *ProjectMember) CreatedAtTime() time.Time { return m.CreatedAt }
func (m *ProjectMember) UpdatedAtTime() time.Time { return m.UpdatedAt }

func (m *ProjectMember) Clone() Record {
	c := *m
	if m.User != nil {
		u := *m.User
		c.User = &u
	}
	return &c
}

func (m *ProjectMember) Stamped(id ID, user ID, now time.Time) Record {
	c := m.Clone().(*ProjectMember)
	c.ID = id
	if c.InvitedBy.IsZero() {
		c.InvitedBy = user
	}
	c.JoinedAt = now
	c.CreatedAt = now
	c.UpdatedAt = now
	return c
}

func (m *ProjectMember) Merge(fields map[string]any, now time.Time) Record {
	c := m.Clone().(*ProjectMember)
	for k, v := range fields {
		switch k {
		case "role":
			c.Role = MemberRole(asString(v))
		case "status":
			c.Status = asString(v)
		}
	}
	c.UpdatedAt = now
	return c
}

func (m *ProjectMember) FilterValue(field string) (string, bool) {
	switch field {
	case "project_id":
		return m.ProjectID.String(), true
	case "user_id":
		return m.UserID.String(), true
	}
	return "", false
}

func (m *ProjectMember) ContentKey() string {
	return contentKey("member", m.ProjectID.String(), m.UserID.String())
}

// contentKey joins the identifying content fields with an unprintable
// separator so adjacent fields cannot run together.
func contentKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}
