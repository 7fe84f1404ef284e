package derive

import (
	"github.com/tidwall/gjson"

	"github.com/prabasiva/greport/internal/warehouse"
)

// ProjectItemView flattens a warehouse.ProjectItem's opaque field-values
// blob into the subset the HTTP surface's project endpoints need,
// projecting with gjson rather than a full JSON unmarshal since the field
// set is open-ended and per-board (§9 Design Note).
type ProjectItemView struct {
	NodeID       string            `json:"node_id"`
	ContentType  string            `json:"content_type"`
	Title        string            `json:"title"`
	State        string            `json:"state"`
	URL          string            `json:"url"`
	FieldValues  map[string]string `json:"field_values"`
}

// ProjectMetrics is the §4.5-adjacent summary the Projects metrics endpoint
// returns: item counts by content type and by each board's "Status"-like
// single-select field, when present.
type ProjectMetrics struct {
	TotalItems   int            `json:"total_items"`
	ByContentType map[string]int `json:"by_content_type"`
	ByStatus      map[string]int `json:"by_status"`
}

// FlattenProjectItem projects a stored item's field_values_json — a flat
// {field name: text|number} object, the shape hostclient.flattenProjectItem
// writes — into a string map the HTTP surface can serialize directly.
func FlattenProjectItem(item warehouse.ProjectItem) ProjectItemView {
	view := ProjectItemView{
		NodeID:      item.NodeID,
		ContentType: item.ContentType,
		Title:       item.Title,
		State:       item.State,
		URL:         item.URL,
		FieldValues: map[string]string{},
	}
	if item.FieldValuesJSON == "" {
		return view
	}

	gjson.Parse(item.FieldValuesJSON).ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Number {
			view.FieldValues[key.String()] = value.Raw
		} else {
			view.FieldValues[key.String()] = value.String()
		}
		return true
	})
	return view
}

// ComputeProjectMetrics implements the items-on-a-board summary the HTTP
// surface's `.../projects/{number}/metrics` endpoint returns (§6.1),
// grouping by content type and by a field conventionally named "Status".
func ComputeProjectMetrics(items []warehouse.ProjectItem) ProjectMetrics {
	metrics := ProjectMetrics{ByContentType: map[string]int{}, ByStatus: map[string]int{}}
	for _, item := range items {
		metrics.TotalItems++
		metrics.ByContentType[item.ContentType]++
		view := FlattenProjectItem(item)
		if status, ok := view.FieldValues["Status"]; ok && status != "" {
			metrics.ByStatus[status]++
		}
	}
	return metrics
}
