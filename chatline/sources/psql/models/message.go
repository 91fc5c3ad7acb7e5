package models

// Message is one entry in the durable chat log. IDs are assigned by the
// MessageDAO in commit order; Timestamp is a display string and plays no
// part in ordering.
type Message struct {
	ID        int64   `json:"id" gorm:"primaryKey"`
	Username  string  `json:"username" gorm:"type:varchar(50);not null"`
	Message   *string `json:"message,omitempty" gorm:"type:text"`
	FilePath  *string `json:"file_path,omitempty" gorm:"type:varchar(255)"`
	Timestamp string  `json:"timestamp" gorm:"type:varchar(50)"`
	Seen      bool    `json:"seen" gorm:"not null;default:false"`
}

// HasContent reports whether the record carries text or an attachment.
func (m *Message) HasContent() bool {
	if m.Message != nil && *m.Message != "" {
		return true
	}
	if m.FilePath != nil && *m.FilePath != "" {
		return true
	}
	return false
}
