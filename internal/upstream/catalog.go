package upstream

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/galaxytools/craft-tracker/internal/models"
)

// Bulk catalog pulls go through the same admission control as lookups but
// bypass the response cache; the freshness tracker decides when they run.

type resourceListResponse struct {
	Resources []resourceRow `xml:"Body>GetResourceListResponse>resource"`
}

type resourceRow struct {
	Name    string `xml:"name"`
	Class   string `xml:"class"`
	Planet  string `xml:"planet"`
	Stats   string `xml:"stats"`
	Spawned string `xml:"spawned"`
}

type schematicListResponse struct {
	Schematics []schematicRow `xml:"Body>GetSchematicListResponse>schematic"`
}

type schematicRow struct {
	ID         string `xml:"id"`
	Name       string `xml:"name"`
	Category   string `xml:"category"`
	Complexity int    `xml:"complexity"`
}

// FetchResources pulls the full current resource list from the provider.
func (c *Client) FetchResources(ctx context.Context) ([]models.Resource, error) {
	body, err := c.fetchBulk(ctx, "GetResourceList")
	if err != nil {
		return nil, err
	}

	var parsed resourceListResponse
	if err := xml.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("parsing resource list: %w", err)
	}

	resources := make([]models.Resource, 0, len(parsed.Resources))
	for _, row := range parsed.Resources {
		r := models.Resource{
			Name:    row.Name,
			ClassID: row.Class,
			Planet:  row.Planet,
			Stats:   row.Stats,
		}
		if spawned, err := time.Parse(time.RFC3339, row.Spawned); err == nil {
			r.SpawnedAt = spawned
		}
		resources = append(resources, r)
	}
	return resources, nil
}

// FetchSchematics pulls the full schematic catalog from the provider.
func (c *Client) FetchSchematics(ctx context.Context) ([]models.Schematic, error) {
	body, err := c.fetchBulk(ctx, "GetSchematicList")
	if err != nil {
		return nil, err
	}

	var parsed schematicListResponse
	if err := xml.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("parsing schematic list: %w", err)
	}

	schematics := make([]models.Schematic, 0, len(parsed.Schematics))
	for _, row := range parsed.Schematics {
		schematics = append(schematics, models.Schematic{
			ExternalID: row.ID,
			Name:       row.Name,
			Category:   row.Category,
			Complexity: row.Complexity,
		})
	}
	return schematics, nil
}

func (c *Client) fetchBulk(ctx context.Context, action string) (string, error) {
	if res := c.limiter.Check(limiterKey); !res.Allowed {
		return "", ErrRateLimited
	}

	envelope := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <%[1]s/>
  </soap:Body>
</soap:Envelope>`, action)

	return c.call(ctx, action, envelope)
}
