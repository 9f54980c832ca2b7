package model

type (
	ActiveEntitlement struct {
		Object        string `json:"object"`
		EntitlementId string `json:"entitlement_id"`
		ExpiresAt     Millis `json:"expires_at"`
	}

	Entitlement struct {
		Object      string `json:"object"`
		Id          string `json:"id"`
		ProjectId   string `json:"project_id"`
		LookupKey   string `json:"lookup_key"`
		DisplayName string `json:"display_name"`
		CreatedAt   Millis `json:"created_at"`
	}

	EntitlementList struct {
		Items []Entitlement `json:"items"`
	}
)
