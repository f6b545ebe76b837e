package dto

import "encoding/json"

type AddClientRequest struct {
	Name string `json:"name" binding:"required"`
}

type EditClientRequest struct {
	Name         *string `json:"name"`
	GroupName    *string `json:"group_name"`
	Remark       *string `json:"remark"`
	PublicRemark *string `json:"public_remark"`
	Hidden       *bool   `json:"hidden"`
	Weight       *int32  `json:"weight"`
}

type ClientTokenResponse struct {
	UUID  string `json:"uuid"`
	Token string `json:"token"`
}

type SettingsResponse struct {
	SiteName        json.RawMessage `json:"site_name"`
	SiteDescription json.RawMessage `json:"site_description"`
}

type UpdateSettingsRequest struct {
	SiteName        *string `json:"site_name"`
	SiteDescription *string `json:"site_description"`
}

type AddNotificationRequest struct {
	Name     string          `json:"name" binding:"required"`
	Provider string          `json:"provider" binding:"required"`
	Config   json.RawMessage `json:"config" binding:"required"`
}

type TestNotificationRequest struct {
	Provider string          `json:"provider" binding:"required"`
	Config   json.RawMessage `json:"config" binding:"required"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
}

type AddPingTaskRequest struct {
	Name            string `json:"name" binding:"required"`
	Target          string `json:"target" binding:"required"`
	IntervalSeconds int32  `json:"interval_seconds"`
	TimeoutSeconds  int32  `json:"timeout_seconds"`
}
