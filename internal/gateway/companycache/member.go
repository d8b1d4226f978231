package companycache

import "google.golang.org/protobuf/types/known/structpb"

// Member is the cached member record as the cache service reports it.
type Member struct {
	UserID           int64
	Role             int
	NpcType          int
	Permissions      int64
	CreatedAt        int64
	UpdatedAt        int64
	CompanyJoinedAt  int64
	LeftAt           int64
	FullName         string
	ShortDescription string
	AvatarFileKey    string
	Comment          string
	Extra            map[string]any
}

func memberFromStruct(s *structpb.Struct) *Member {
	if s == nil {
		return nil
	}

	fields := s.GetFields()
	number := func(name string) int64 {
		return int64(fields[name].GetNumberValue())
	}
	text := func(name string) string {
		return fields[name].GetStringValue()
	}

	m := &Member{
		UserID:           number("user_id"),
		Role:             int(number("role")),
		NpcType:          int(number("npc_type")),
		Permissions:      number("permissions"),
		CreatedAt:        number("created_at"),
		UpdatedAt:        number("updated_at"),
		CompanyJoinedAt:  number("company_joined_at"),
		LeftAt:           number("left_at"),
		FullName:         text("full_name"),
		ShortDescription: text("short_description"),
		AvatarFileKey:    text("avatar_file_key"),
		Comment:          text("comment"),
	}
	if extra := fields["extra"].GetStructValue(); extra != nil {
		m.Extra = extra.AsMap()
	}
	return m
}
