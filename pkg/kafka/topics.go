package kafka

import "fmt"

// TopicPrefix namespaces every topic owned by this repository.
const TopicPrefix = "statscustoms"

// Topic constructs a fully-qualified topic name, e.g.
// Topic("content", "segments") is "statscustoms.content.segments".
func Topic(domain, stream string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, stream)
}

// DLQTopicPrefix is the prefix for dead-letter topics.
const DLQTopicPrefix = TopicPrefix + ".dlq"

// DLQTopic returns the dead-letter topic for a source topic.
func DLQTopic(topic string) string {
	return fmt.Sprintf("%s.%s", DLQTopicPrefix, topic)
}
