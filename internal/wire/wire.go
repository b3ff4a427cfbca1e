// Package wire translates between JSON task records and canonical tasks.
//
// Backends have shipped several field names for the same attribute over
// time; FromWire reads the first one present. ToWire always writes the names
// the current task service expects.
package wire

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/service"
)

// Record is a decoded JSON object as sent or received over HTTP.
type Record map[string]any

// Wire field names written by ToWire.
const (
	FieldID          = "id"
	FieldTitle       = "titulo"
	FieldDescription = "descripcion"
	FieldStatus      = "estado"
	FieldPriority    = "prioridad"
	FieldAssignee    = "asignadoA"
	FieldDueDate     = "fechaEntrega"
)

// Alternate names, highest priority first.
var (
	idKeys          = []string{FieldID, "_id", "taskId"}
	titleKeys       = []string{FieldTitle, "title", "nombre", "name"}
	descriptionKeys = []string{FieldDescription, "descripcionTarea", "description", "notes"}
	statusKeys      = []string{FieldStatus, "status"}
	priorityKeys    = []string{FieldPriority, "priority"}
	assigneeKeys    = []string{FieldAssignee, "asignado", "owner", "assignee"}
	dueDateKeys     = []string{FieldDueDate, "dueDate", "due"}
)

var statusAliases = map[string]service.Status{
	"PENDING":     service.StatusPending,
	"PENDIENTE":   service.StatusPending,
	"TODO":        service.StatusPending,
	"NEEDSACTION": service.StatusPending,
	"IN_PROGRESS": service.StatusInProgress,
	"INPROGRESS":  service.StatusInProgress,
	"EN_PROGRESO": service.StatusInProgress,
	"DOING":       service.StatusInProgress,
	"DONE":        service.StatusDone,
	"COMPLETADA":  service.StatusDone,
	"COMPLETED":   service.StatusDone,
	"HECHA":       service.StatusDone,
}

var priorityAliases = map[string]service.Priority{
	"LOW":    service.PriorityLow,
	"BAJA":   service.PriorityLow,
	"MEDIUM": service.PriorityMedium,
	"MEDIA":  service.PriorityMedium,
	"HIGH":   service.PriorityHigh,
	"ALTA":   service.PriorityHigh,
}

var wireStatus = map[service.Status]string{
	service.StatusPending:    "PENDIENTE",
	service.StatusInProgress: "EN_PROGRESO",
	service.StatusDone:       "COMPLETADA",
}

var wirePriority = map[service.Priority]string{
	service.PriorityLow:    "BAJA",
	service.PriorityMedium: "MEDIA",
	service.PriorityHigh:   "ALTA",
}

// FromWire converts a wire record into a canonical task. Missing fields take
// their defaults; unknown fields are ignored.
func FromWire(rec Record) service.Task {
	return service.Task{
		ID:          lookup(rec, idKeys),
		Title:       lookup(rec, titleKeys),
		Description: lookup(rec, descriptionKeys),
		Status:      StatusFromWire(lookup(rec, statusKeys)),
		Priority:    PriorityFromWire(lookup(rec, priorityKeys)),
		Assignee:    lookup(rec, assigneeKeys),
		DueDate:     dateOnly(lookup(rec, dueDateKeys)),
	}
}

// ToWire projects a canonical task onto the service's field names. The id
// field is omitted for tasks that have not been created yet.
func ToWire(t service.Task) Record {
	rec := Record{
		FieldTitle:       t.Title,
		FieldDescription: t.Description,
		FieldStatus:      StatusToWire(t.Status),
		FieldPriority:    PriorityToWire(t.Priority),
		FieldAssignee:    t.Assignee,
		FieldDueDate:     t.DueDate,
	}
	if t.ID != "" {
		rec[FieldID] = idToWire(t.ID)
	}
	return rec
}

// StatusFromWire maps any known spelling to a status. Unrecognised values
// default to PENDING.
func StatusFromWire(s string) service.Status {
	if st, ok := statusAliases[aliasKey(s)]; ok {
		return st
	}
	return service.StatusPending
}

// StatusToWire returns the service's spelling of s.
func StatusToWire(s service.Status) string {
	if w, ok := wireStatus[s]; ok {
		return w
	}
	return wireStatus[service.StatusPending]
}

// PriorityFromWire maps any known spelling to a priority, defaulting to MEDIUM.
func PriorityFromWire(s string) service.Priority {
	if p, ok := priorityAliases[aliasKey(s)]; ok {
		return p
	}
	return service.PriorityMedium
}

// PriorityToWire returns the service's spelling of p.
func PriorityToWire(p service.Priority) string {
	if w, ok := wirePriority[p]; ok {
		return w
	}
	return wirePriority[service.PriorityMedium]
}

// DecodeRecord decodes a single JSON object.
func DecodeRecord(r io.Reader) (Record, error) {
	var rec Record
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode task record: %w", err)
	}
	return rec, nil
}

// DecodeRecords decodes a JSON array of task objects. A page envelope such
// as {"content": [...]} is unwrapped.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}

	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) > 0 && raw[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode task list: %w", err)
		}
		raw = nil
		for _, key := range []string{"content", "data", "items", "tasks"} {
			if v, ok := envelope[key]; ok {
				raw = v
				break
			}
		}
		if raw == nil {
			return nil, fmt.Errorf("decode task list: object without a task array")
		}
	}

	var recs []Record
	inner := json.NewDecoder(strings.NewReader(string(raw)))
	inner.UseNumber()
	if err := inner.Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return recs, nil
}

// FromWireAll converts every record in order.
func FromWireAll(recs []Record) []service.Task {
	tasks := make([]service.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, FromWire(rec))
	}
	return tasks
}

func lookup(rec Record, keys []string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func aliasKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func dateOnly(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(time.DateOnly)
	}
	return s
}

// idToWire sends canonical integers as JSON numbers. Anything else, including
// "007" and "+5", stays a string so it reaches the backend unchanged.
func idToWire(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
		return json.Number(id)
	}
	return id
}
