package models

import "github.com/uptrace/bun"

type Plugin struct {
	bun.BaseModel `bun:"table:plugins"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull" json:"name"`
	PluginType    string `bun:"plugin_type,notnull,default:'user'" json:"plugin_type"`
	Active        bool   `bun:"active,notnull,default:false" json:"active"`
	Version       string `bun:"version" json:"version,omitempty"`
}
