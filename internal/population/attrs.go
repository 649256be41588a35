package population

import "fmt"

// DefineColumn installs (or replaces) an attribute column. Values are given
// in mode order, parallel to OrderedIDs, and are split across the mode
// sub-arenas internally. The column length must equal the current node
// count; a mismatch is INCONSISTENT_ATTRIBUTE_LENGTH.
func (s *Store) DefineColumn(name string, col *Column) error {
	if col.Len() != s.N() {
		return &Error{
			Code:    ErrCodeInconsistentAttributeLength,
			Message: fmt.Sprintf("column length %d, want %d", col.Len(), s.N()),
			Attr:    name,
		}
	}
	if !s.hasColumn(name) {
		s.colNames = append(s.colNames, name)
	}
	offset := 0
	for _, a := range s.arenas {
		part := &Column{kind: col.kind}
		for i := range a.ids {
			if col.kind == KindCategorical {
				part.cat = append(part.cat, col.cat[offset+i])
			} else {
				part.num = append(part.num, col.num[offset+i])
			}
		}
		a.cols[name] = part
		offset += len(a.ids)
	}
	return nil
}

func (s *Store) hasColumn(name string) bool {
	_, ok := s.arenas[0].cols[name]
	return ok
}

// HasColumn reports whether the named attribute is defined.
func (s *Store) HasColumn(name string) bool { return s.hasColumn(name) }

// Columns returns attribute names in declaration order.
func (s *Store) Columns() []string {
	return append([]string(nil), s.colNames...)
}

// ColumnKind returns the value type of the named column.
func (s *Store) ColumnKind(name string) (Kind, error) {
	c, ok := s.arenas[0].cols[name]
	if !ok {
		return 0, errUnknownAttribute(name)
	}
	return c.kind, nil
}

// ColumnValues returns an independent copy of the named column in mode
// order, parallel to OrderedIDs.
func (s *Store) ColumnValues(name string) (*Column, error) {
	first, ok := s.arenas[0].cols[name]
	if !ok {
		return nil, errUnknownAttribute(name)
	}
	merged := &Column{kind: first.kind}
	for _, a := range s.arenas {
		c := a.cols[name]
		if first.kind == KindCategorical {
			merged.cat = append(merged.cat, c.cat...)
		} else {
			merged.num = append(merged.num, c.num...)
		}
	}
	return merged, nil
}

func (s *Store) cell(name string, id int) (*Column, int32, error) {
	r, err := s.ref(id)
	if err != nil {
		return nil, 0, err
	}
	c, ok := s.arenas[r.arena].cols[name]
	if !ok {
		return nil, 0, errUnknownAttribute(name)
	}
	return c, r.row, nil
}

// CatAt returns the categorical value of the named attribute for one node.
func (s *Store) CatAt(name string, id int) (string, error) {
	c, row, err := s.cell(name, id)
	if err != nil {
		return "", err
	}
	return c.Cat(int(row)), nil
}

// NumAt returns the numeric value of the named attribute for one node.
func (s *Store) NumAt(name string, id int) (float64, error) {
	c, row, err := s.cell(name, id)
	if err != nil {
		return 0, err
	}
	return c.Num(int(row)), nil
}

// LabelAt returns the attribute value for one node rendered as a stratum
// label (see Column.Label).
func (s *Store) LabelAt(name string, id int) (string, error) {
	c, row, err := s.cell(name, id)
	if err != nil {
		return "", err
	}
	return c.Label(int(row)), nil
}

// SetCat overwrites the categorical value of the named attribute for one
// node.
func (s *Store) SetCat(name string, id int, v string) error {
	c, row, err := s.cell(name, id)
	if err != nil {
		return err
	}
	c.setCat(int(row), v)
	return nil
}

// SetNum overwrites the numeric value of the named attribute for one node.
func (s *Store) SetNum(name string, id int, v float64) error {
	c, row, err := s.cell(name, id)
	if err != nil {
		return err
	}
	c.setNum(int(row), v)
	return nil
}
