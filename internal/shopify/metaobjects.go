// internal/shopify/metaobjects.go
package shopify

import (
	"context"
	"fmt"
	"strings"
)

// MetaobjectField is one typed key/value pair of a metaobject record.
// Composite values are JSON blobs in the value string.
type MetaobjectField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Metaobject struct {
	ID     string            `json:"id"`
	Handle string            `json:"handle"`
	Type   string            `json:"type"`
	Fields []MetaobjectField `json:"fields"`
}

// MetaobjectDefinition describes the schema registered for a metaobject
// type. Field definitions are fixed per type and created once.
type MetaobjectDefinition struct {
	Type        string
	Name        string
	FieldKeys   []string
	Description string
}

const metaobjectFieldsFragment = `
	id
	handle
	type
	fields {
		key
		value
	}`

// EnsureMetaobjectDefinition registers the definition if it is not
// present. Safe to call repeatedly and concurrently: a lost
// check-then-create race surfaces as a TAKEN user error, which is
// treated as the definition already existing.
func (c *Client) EnsureMetaobjectDefinition(ctx context.Context, def MetaobjectDefinition) error {
	var lookup struct {
		MetaobjectDefinitionByType *struct {
			ID string `json:"id"`
		} `json:"metaobjectDefinitionByType"`
	}

	query := `query definitionByType($type: String!) {
		metaobjectDefinitionByType(type: $type) { id }
	}`
	if err := c.Execute(ctx, query, map[string]interface{}{"type": def.Type}, &lookup); err != nil {
		return fmt.Errorf("failed to query metaobject definition: %w", err)
	}

	if lookup.MetaobjectDefinitionByType != nil {
		return nil
	}

	fieldDefinitions := make([]map[string]interface{}, 0, len(def.FieldKeys))
	for _, key := range def.FieldKeys {
		fieldDefinitions = append(fieldDefinitions, map[string]interface{}{
			"key":  key,
			"name": strings.ReplaceAll(key, "_", " "),
			"type": "single_line_text_field",
		})
	}

	var created struct {
		MetaobjectDefinitionCreate struct {
			MetaobjectDefinition *struct {
				ID string `json:"id"`
			} `json:"metaobjectDefinition"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"metaobjectDefinitionCreate"`
	}

	mutation := `mutation definitionCreate($definition: MetaobjectDefinitionCreateInput!) {
		metaobjectDefinitionCreate(definition: $definition) {
			metaobjectDefinition { id }
			userErrors { field message code }
		}
	}`
	variables := map[string]interface{}{
		"definition": map[string]interface{}{
			"type":             def.Type,
			"name":             def.Name,
			"fieldDefinitions": fieldDefinitions,
		},
	}
	if err := c.Execute(ctx, mutation, variables, &created); err != nil {
		return fmt.Errorf("failed to create metaobject definition: %w", err)
	}

	for _, ue := range created.MetaobjectDefinitionCreate.UserErrors {
		// Another caller won the race; the definition exists, which is
		// the state we wanted.
		if ue.Code == "TAKEN" {
			return nil
		}
	}
	if len(created.MetaobjectDefinitionCreate.UserErrors) > 0 {
		ue := created.MetaobjectDefinitionCreate.UserErrors[0]
		return fmt.Errorf("metaobject definition create rejected: %s", ue.Message)
	}

	return nil
}

// CreateMetaobject issues a create mutation. Field-level validation
// failures come back as user errors, not as a transport error.
func (c *Client) CreateMetaobject(ctx context.Context, mtype string, fields []MetaobjectField) (*Metaobject, []UserError, error) {
	var result struct {
		MetaobjectCreate struct {
			Metaobject *Metaobject `json:"metaobject"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"metaobjectCreate"`
	}

	mutation := fmt.Sprintf(`mutation metaobjectCreate($metaobject: MetaobjectCreateInput!) {
		metaobjectCreate(metaobject: $metaobject) {
			metaobject {%s}
			userErrors { field message code }
		}
	}`, metaobjectFieldsFragment)

	variables := map[string]interface{}{
		"metaobject": map[string]interface{}{
			"type":   mtype,
			"fields": fields,
		},
	}
	if err := c.Execute(ctx, mutation, variables, &result); err != nil {
		return nil, nil, fmt.Errorf("metaobject create failed: %w", err)
	}

	return result.MetaobjectCreate.Metaobject, result.MetaobjectCreate.UserErrors, nil
}

// UpdateMetaobject replaces the given fields on an existing record.
// Fields not named keep their stored value; there is no partial patch
// below field granularity.
func (c *Client) UpdateMetaobject(ctx context.Context, id string, fields []MetaobjectField) (*Metaobject, []UserError, error) {
	var result struct {
		MetaobjectUpdate struct {
			Metaobject *Metaobject `json:"metaobject"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"metaobjectUpdate"`
	}

	mutation := fmt.Sprintf(`mutation metaobjectUpdate($id: ID!, $metaobject: MetaobjectUpdateInput!) {
		metaobjectUpdate(id: $id, metaobject: $metaobject) {
			metaobject {%s}
			userErrors { field message code }
		}
	}`, metaobjectFieldsFragment)

	variables := map[string]interface{}{
		"id":         id,
		"metaobject": map[string]interface{}{"fields": fields},
	}
	if err := c.Execute(ctx, mutation, variables, &result); err != nil {
		return nil, nil, fmt.Errorf("metaobject update failed: %w", err)
	}

	return result.MetaobjectUpdate.Metaobject, result.MetaobjectUpdate.UserErrors, nil
}

// DeleteMetaobject removes a record. It reports success plus the raw
// remote error list so callers can relay it.
func (c *Client) DeleteMetaobject(ctx context.Context, id string) (bool, []UserError, error) {
	var result struct {
		MetaobjectDelete struct {
			DeletedID  string      `json:"deletedId"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"metaobjectDelete"`
	}

	mutation := `mutation metaobjectDelete($id: ID!) {
		metaobjectDelete(id: $id) {
			deletedId
			userErrors { field message code }
		}
	}`
	if err := c.Execute(ctx, mutation, map[string]interface{}{"id": id}, &result); err != nil {
		return false, nil, fmt.Errorf("metaobject delete failed: %w", err)
	}

	return result.MetaobjectDelete.DeletedID != "", result.MetaobjectDelete.UserErrors, nil
}

// GetMetaobject fetches a single record. A missing id yields (nil, nil)
// rather than an error.
func (c *Client) GetMetaobject(ctx context.Context, id string) (*Metaobject, error) {
	var result struct {
		Metaobject *Metaobject `json:"metaobject"`
	}

	query := fmt.Sprintf(`query metaobject($id: ID!) {
		metaobject(id: $id) {%s}
	}`, metaobjectFieldsFragment)

	if err := c.Execute(ctx, query, map[string]interface{}{"id": id}, &result); err != nil {
		return nil, fmt.Errorf("metaobject fetch failed: %w", err)
	}

	return result.Metaobject, nil
}

// ListMetaobjects returns one cursor page. The store offers no filter
// predicate, so callers scan the whole collection and filter in memory.
func (c *Client) ListMetaobjects(ctx context.Context, mtype string, first int, after string) ([]Metaobject, bool, string, error) {
	var result struct {
		Metaobjects struct {
			Nodes    []Metaobject `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"metaobjects"`
	}

	query := fmt.Sprintf(`query metaobjects($type: String!, $first: Int!, $after: String) {
		metaobjects(type: $type, first: $first, after: $after) {
			nodes {%s}
			pageInfo {
				hasNextPage
				endCursor
			}
		}
	}`, metaobjectFieldsFragment)

	variables := map[string]interface{}{
		"type":  mtype,
		"first": first,
	}
	if after != "" {
		variables["after"] = after
	}
	if err := c.Execute(ctx, query, variables, &result); err != nil {
		return nil, false, "", fmt.Errorf("metaobject list failed: %w", err)
	}

	return result.Metaobjects.Nodes,
		result.Metaobjects.PageInfo.HasNextPage,
		result.Metaobjects.PageInfo.EndCursor,
		nil
}
