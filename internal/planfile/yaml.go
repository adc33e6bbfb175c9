package planfile

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/staffplan/internal/domain"
)

// yamlDoc is the loose document shape. Keys are resolved through the
// domain parsers so "Turno 1", "turno1", "Miércoles" and "mie" all work.
type yamlDoc struct {
	Staffing     map[string]map[string]int    `yaml:"staffing"`
	Schedule     map[string]map[string]string `yaml:"schedule"`
	Workload     map[string]int               `yaml:"workload"`
	SKUPerPerson *int                         `yaml:"sku_per_person"`
}

func decodeYAML(r io.Reader) (domain.Plan, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return domain.Plan{}, fmt.Errorf("decoding yaml: %w", err)
	}

	plan := base()
	for shiftKey, roles := range doc.Staffing {
		shift, err := domain.ParseShift(shiftKey)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("staffing: %w", err)
		}
		staff := plan.Staffing[shift]
		for roleKey, n := range roles {
			role, err := domain.ParseRole(roleKey)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("staffing.%s: %w", shiftKey, err)
			}
			staff = staff.WithCount(role, n)
		}
		plan.Staffing[shift] = staff
	}
	for shiftKey, days := range doc.Schedule {
		shift, err := domain.ParseShift(shiftKey)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("schedule: %w", err)
		}
		for dayKey, entry := range days {
			day, err := domain.ParseDay(dayKey)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("schedule.%s: %w", shiftKey, err)
			}
			plan.Schedule[shift][day] = entry
		}
	}
	for dayKey, sku := range doc.Workload {
		day, err := domain.ParseDay(dayKey)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("workload: %w", err)
		}
		plan.Workload[day] = sku
	}
	if doc.SKUPerPerson != nil {
		plan.SKUPerPerson = *doc.SKUPerPerson
	}
	return plan.Normalize(), nil
}

// encodeYAML builds the node tree by hand so shifts and days keep planning
// order instead of yaml's sorted map keys.
func encodeYAML(w io.Writer, plan domain.Plan) error {
	staffing := mapping()
	schedule := mapping()
	for _, shift := range domain.Shifts {
		roles := mapping()
		staff := plan.Staffing[shift]
		for _, role := range domain.Roles {
			appendPair(roles, string(role), intNode(staff.Count(role)))
		}
		appendPair(staffing, string(shift), roles)

		days := mapping()
		for _, day := range domain.Week {
			appendPair(days, string(day), strNode(plan.Schedule.Entry(shift, day)))
		}
		appendPair(schedule, string(shift), days)
	}
	workload := mapping()
	for _, day := range domain.Week {
		appendPair(workload, string(day), intNode(plan.Workload[day]))
	}

	root := mapping()
	appendPair(root, "staffing", staffing)
	appendPair(root, "schedule", schedule)
	appendPair(root, "workload", workload)
	appendPair(root, "sku_per_person", intNode(plan.SKUPerPerson))

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(n int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n)}
}
