package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

// filterableColumns guards interpolated identifiers: filter and sort specs
// arrive from the wire and must never reach SQL text unchecked.
var filterableColumns = func() map[string]bool {
	cols := map[string]bool{}
	for _, c := range Columns() {
		cols[c] = true
	}
	return cols
}()

// conditionSQL renders one predicate against a validated column.
func conditionSQL(column string, cond models.FilterCondition) (string, []any, error) {
	switch cond.Type {
	case models.FilterEquals:
		return fmt.Sprintf("%s = ?", column), []any{cond.Filter}, nil
	case models.FilterContains:
		return fmt.Sprintf("%s LIKE ?", column), []any{fmt.Sprintf("%%%v%%", cond.Filter)}, nil
	case models.FilterBlank:
		return fmt.Sprintf("%s IS NULL", column), nil, nil
	case models.FilterNotBlank:
		return fmt.Sprintf("%s IS NOT NULL", column), nil, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported filter type %q", shared.ErrInvalidArgument, cond.Type)
	}
}

// buildWhere translates a [models.FilterModel] into a WHERE clause and its
// parameters. Fields are combined with AND; a combined node combines its own
// conditions with the node's operator. Returns an empty clause for an empty
// model.
func buildWhere(filter models.FilterModel) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	// Deterministic clause order keeps queries cacheable and tests stable.
	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	clauses := []string{}
	args := []any{}

	for _, field := range fields {
		if !filterableColumns[field] {
			return "", nil, fmt.Errorf("%w: unknown filter field %q", shared.ErrInvalidArgument, field)
		}

		node := filter[field]
		if node.Combined() {
			op := strings.ToUpper(node.Operator)
			if op != "AND" && op != "OR" {
				return "", nil, fmt.Errorf("%w: unsupported filter operator %q", shared.ErrInvalidArgument, node.Operator)
			}
			if len(node.Conditions) == 0 {
				continue
			}
			parts := []string{}
			for _, cond := range node.Conditions {
				sqlPart, condArgs, err := conditionSQL(field, cond)
				if err != nil {
					return "", nil, err
				}
				parts = append(parts, sqlPart)
				args = append(args, condArgs...)
			}
			clauses = append(clauses, "("+strings.Join(parts, " "+op+" ")+")")
			continue
		}

		sqlPart, condArgs, err := conditionSQL(field, models.FilterCondition{
			FilterType: node.FilterType,
			Type:       node.Type,
			Filter:     node.Filter,
		})
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, sqlPart)
		args = append(args, condArgs...)
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// buildOrder translates a sort specification into an ORDER BY clause.
func buildOrder(sortModel []models.SortItem) (string, error) {
	if len(sortModel) == 0 {
		return "", nil
	}

	parts := []string{}
	for _, item := range sortModel {
		if !filterableColumns[item.Column] {
			return "", fmt.Errorf("%w: unknown sort column %q", shared.ErrInvalidArgument, item.Column)
		}
		direction := "ASC"
		if strings.EqualFold(item.Direction, "desc") {
			direction = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", item.Column, direction))
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
