package entity

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// NotificationType 通知类型，封闭枚举，零值非法
type NotificationType uint8

const (
	TypeUnknown NotificationType = iota
	TypeCommentReply
	TypeRatingReply
	TypeLike
	TypeDislike
)

var notificationTypeNames = [...]string{
	TypeUnknown:      "",
	TypeCommentReply: "comment_reply",
	TypeRatingReply:  "rating_reply",
	TypeLike:         "like",
	TypeDislike:      "dislike",
}

func ParseNotificationType(s string) (NotificationType, error) {
	s = strings.TrimSpace(s)
	for i, name := range notificationTypeNames {
		if i != int(TypeUnknown) && name == s {
			return NotificationType(i), nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown notification type %q", s)
}

func (t NotificationType) Valid() bool {
	return t > TypeUnknown && int(t) < len(notificationTypeNames)
}

func (t NotificationType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return notificationTypeNames[t]
}

func (t NotificationType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid notification type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *NotificationType) UnmarshalText(b []byte) error {
	v, err := ParseNotificationType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t NotificationType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid notification type %d", uint8(t))
	}
	return t.String(), nil
}

func (t *NotificationType) Scan(src interface{}) error {
	return scanEnum(src, t.UnmarshalText)
}

// EntityType 通知关联的业务实体类型
type EntityType uint8

const (
	EntityUnknown EntityType = iota
	EntityComment
	EntityRating
)

var entityTypeNames = [...]string{
	EntityUnknown: "",
	EntityComment: "comment",
	EntityRating:  "rating",
}

func ParseEntityType(s string) (EntityType, error) {
	s = strings.TrimSpace(s)
	for i, name := range entityTypeNames {
		if i != int(EntityUnknown) && name == s {
			return EntityType(i), nil
		}
	}
	return EntityUnknown, fmt.Errorf("unknown entity type %q", s)
}

func (e EntityType) Valid() bool {
	return e > EntityUnknown && int(e) < len(entityTypeNames)
}

func (e EntityType) String() string {
	if !e.Valid() {
		return "unknown"
	}
	return entityTypeNames[e]
}

func (e EntityType) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("invalid entity type %d", uint8(e))
	}
	return []byte(e.String()), nil
}

func (e *EntityType) UnmarshalText(b []byte) error {
	v, err := ParseEntityType(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (e EntityType) Value() (driver.Value, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("invalid entity type %d", uint8(e))
	}
	return e.String(), nil
}

func (e *EntityType) Scan(src interface{}) error {
	return scanEnum(src, e.UnmarshalText)
}

func scanEnum(src interface{}, parse func([]byte) error) error {
	switch v := src.(type) {
	case string:
		return parse([]byte(v))
	case []byte:
		return parse(v)
	default:
		return fmt.Errorf("cannot scan %T into enum", src)
	}
}
