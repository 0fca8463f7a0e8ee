package models

// TagSource represents where a quest tag came from
type TagSource string

const (
	TagSourceUser       TagSource = "user"
	TagSourceClassifier TagSource = "classifier"
)

// QuestMetadata contains tags and skill trees attached to a quest
type QuestMetadata struct {
	Tags       []string             `json:"tags,omitempty"`
	TagSources map[string]TagSource `json:"tag_sources,omitempty"`
	SkillTrees []string             `json:"skill_trees,omitempty"`
}

// MergeTags merges classifier tags with user tags, with user tags taking precedence
func (m *QuestMetadata) MergeTags(classifierTags []string, userTags []string) {
	if m.TagSources == nil {
		m.TagSources = make(map[string]TagSource)
	}

	for _, tag := range classifierTags {
		if !contains(userTags, tag) {
			m.Tags = appendIfNotExists(m.Tags, tag)
			m.TagSources[tag] = TagSourceClassifier
		}
	}

	for _, tag := range userTags {
		m.Tags = appendIfNotExists(m.Tags, tag)
		m.TagSources[tag] = TagSourceUser
	}
}

// SetUserTags replaces all tags with user-defined tags
func (m *QuestMetadata) SetUserTags(tags []string) {
	m.Tags = nil
	m.TagSources = make(map[string]TagSource, len(tags))
	for _, tag := range tags {
		m.Tags = appendIfNotExists(m.Tags, tag)
		m.TagSources[tag] = TagSourceUser
	}
}

// RemoveTag removes a tag from the metadata
func (m *QuestMetadata) RemoveTag(tag string) {
	newTags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		if t != tag {
			newTags = append(newTags, t)
		}
	}
	m.Tags = newTags

	if m.TagSources != nil {
		delete(m.TagSources, tag)
	}
}

// UserTags returns only tags that are user-defined
func (m *QuestMetadata) UserTags() []string {
	return m.tagsFrom(TagSourceUser)
}

// ClassifierTags returns only tags that came from the brain dump classifier
func (m *QuestMetadata) ClassifierTags() []string {
	return m.tagsFrom(TagSourceClassifier)
}

func (m *QuestMetadata) tagsFrom(source TagSource) []string {
	if m.TagSources == nil {
		return nil
	}

	tags := make([]string, 0)
	for _, tag := range m.Tags {
		if m.TagSources[tag] == source {
			tags = append(tags, tag)
		}
	}
	return tags
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func appendIfNotExists(slice []string, item string) []string {
	if !contains(slice, item) {
		return append(slice, item)
	}
	return slice
}
