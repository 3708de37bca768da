package tictactoe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
)

const commandPlaceMove = "place_move"

// coordinates beyond this are rejected before conversion to int.
const maxCoordinate = 1 << 20

type Command struct {
	Column int
	Row    int
}

// ParseCommand - parses "place_move <column> <row>". Coordinates are read as numbers and truncated.
func ParseCommand(input string) (Command, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 || parts[0] != commandPlaceMove {
		return Command{}, apperror.ErrParseInput
	}

	if len(parts) < 3 {
		return Command{}, fmt.Errorf("%w: missing coordinates", apperror.ErrParseInput)
	}

	column, err := parseCoordinate(parts[1])
	if err != nil {
		return Command{}, fmt.Errorf("%w: column: %w", apperror.ErrParseInput, err)
	}

	row, err := parseCoordinate(parts[2])
	if err != nil {
		return Command{}, fmt.Errorf("%w: row: %w", apperror.ErrParseInput, err)
	}

	return Command{Column: column, Row: row}, nil
}

func parseCoordinate(value string) (int, error) {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(number) || math.Abs(number) > maxCoordinate {
		return 0, fmt.Errorf("coordinate %q out of range", value)
	}

	return int(number), nil
}
