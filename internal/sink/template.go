package sink

import (
	"encoding/json"
	"fmt"
)

// templateName is the index template installed for index.
func templateName(index string) string {
	return index + "-template"
}

// indexTemplate builds a composable index template for the sign-in index.
// Both geo points are mapped as geo_point and addresses as ip so map and
// CIDR queries work on the generated data.
func indexTemplate(index string) ([]byte, error) {
	template := map[string]interface{}{
		"index_patterns": []string{index, index + "-*"},
		"template": map[string]interface{}{
			"settings": map[string]interface{}{
				"number_of_shards":   1,
				"number_of_replicas": 0,
			},
			"mappings": signInMappings(),
		},
		"priority": 100,
	}

	body, err := json.Marshal(template)
	if err != nil {
		return nil, fmt.Errorf("encode index template: %w", err)
	}
	return body, nil
}

func keyword() map[string]interface{} {
	return map[string]interface{}{"type": "keyword"}
}

func signInMappings() map[string]interface{} {
	geoPoint := map[string]interface{}{"type": "geo_point"}
	ip := map[string]interface{}{"type": "ip"}

	return map[string]interface{}{
		"properties": map[string]interface{}{
			"@timestamp": map[string]interface{}{
				"type": "date",
			},
			"azure": map[string]interface{}{
				"properties": map[string]interface{}{
					"correlation_id": keyword(),
					"tenant_id":      keyword(),
					"signinlogs": map[string]interface{}{
						"properties": map[string]interface{}{
							"category": keyword(),
							"properties": map[string]interface{}{
								"properties": map[string]interface{}{
									"app_id":                    keyword(),
									"client_app_used":           keyword(),
									"conditional_access_status": keyword(),
									"created_at": map[string]interface{}{
										"type": "date",
									},
									"is_interactive": map[string]interface{}{
										"type": "boolean",
									},
									"processing_time_ms": map[string]interface{}{
										"type": "integer",
									},
									"risk_detail":         keyword(),
									"risk_state":          keyword(),
									"user_principal_name": keyword(),
								},
							},
						},
					},
				},
			},
			"client": map[string]interface{}{
				"properties": map[string]interface{}{
					"ip": ip,
				},
			},
			"event": map[string]interface{}{
				"properties": map[string]interface{}{
					"action":   keyword(),
					"category": keyword(),
					"id":       keyword(),
					"outcome":  keyword(),
				},
			},
			"geo": map[string]interface{}{
				"properties": map[string]interface{}{
					"city_name":        keyword(),
					"country_iso_code": keyword(),
					"location":         geoPoint,
				},
			},
			"source": map[string]interface{}{
				"properties": map[string]interface{}{
					"ip": ip,
					"geo": map[string]interface{}{
						"properties": map[string]interface{}{
							"country_iso_code": keyword(),
							"location":         geoPoint,
						},
					},
				},
			},
			"user": map[string]interface{}{
				"properties": map[string]interface{}{
					"domain": keyword(),
					"id":     keyword(),
					"name":   keyword(),
				},
			},
		},
	}
}
