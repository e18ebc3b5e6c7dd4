// internal/shopify/metafields.go
package shopify

import (
	"context"
	"fmt"
)

// GetCartTransformID resolves the cart transform resource that owns the
// synchronized snapshot metafield. A shop has at most one installed by
// this app.
func (c *Client) GetCartTransformID(ctx context.Context) (string, error) {
	var result struct {
		CartTransforms struct {
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
		} `json:"cartTransforms"`
	}

	query := `query cartTransforms {
		cartTransforms(first: 1) {
			nodes { id }
		}
	}`
	if err := c.Execute(ctx, query, nil, &result); err != nil {
		return "", fmt.Errorf("cart transform lookup failed: %w", err)
	}

	if len(result.CartTransforms.Nodes) == 0 {
		return "", fmt.Errorf("no cart transform installed on shop")
	}

	return result.CartTransforms.Nodes[0].ID, nil
}

// SetMetafield overwrites the value of a single metafield wholesale.
// The synchronizer relies on this being a full replace: interleaved
// writers converge on whichever complete snapshot landed last.
func (c *Client) SetMetafield(ctx context.Context, ownerID, namespace, key, valueType, value string) error {
	var result struct {
		MetafieldsSet struct {
			Metafields []struct {
				ID string `json:"id"`
			} `json:"metafields"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}

	mutation := `mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
		metafieldsSet(metafields: $metafields) {
			metafields { id }
			userErrors { field message code }
		}
	}`
	variables := map[string]interface{}{
		"metafields": []map[string]interface{}{{
			"ownerId":   ownerID,
			"namespace": namespace,
			"key":       key,
			"type":      valueType,
			"value":     value,
		}},
	}
	if err := c.Execute(ctx, mutation, variables, &result); err != nil {
		return fmt.Errorf("metafield set failed: %w", err)
	}

	if len(result.MetafieldsSet.UserErrors) > 0 {
		ue := result.MetafieldsSet.UserErrors[0]
		return fmt.Errorf("metafield set rejected: %s", ue.Message)
	}

	return nil
}
