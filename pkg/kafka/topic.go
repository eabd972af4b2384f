package kafka

import "fmt"

// TopicPrefix namespaces every topic written by this module.
const TopicPrefix = "blendcart"

// Topic builds a topic name such as "blendcart.catalog.product".
func Topic(domain, aggregate string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, aggregate)
}
