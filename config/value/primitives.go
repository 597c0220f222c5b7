package value

import (
	"fmt"
	"strconv"
	"strings"
)

// string

type String string

func NewString(p *string, val string) *String {
	*p = val

	return (*String)(p)
}

func (s *String) Set(val string) error {
	*s = String(val)
	return nil
}

func (s *String) String() string {
	return string(*s)
}

func (s *String) Validate() error {
	return nil
}

func (s *String) IsEmpty() bool {
	return len(string(*s)) == 0
}

// one of a list of strings

type Choice struct {
	p       *string
	choices []string
}

func NewChoice(p *string, val string, choices []string) *Choice {
	*p = val

	return &Choice{
		p:       p,
		choices: choices,
	}
}

func (c *Choice) Set(val string) error {
	*c.p = strings.ToLower(strings.TrimSpace(val))
	return nil
}

func (c *Choice) String() string {
	return *c.p
}

func (c *Choice) Validate() error {
	for _, choice := range c.choices {
		if *c.p == choice {
			return nil
		}
	}

	return fmt.Errorf("'%s' is not one of %s", *c.p, strings.Join(c.choices, ", "))
}

func (c *Choice) IsEmpty() bool {
	return len(*c.p) == 0
}

// boolean

type Bool bool

func NewBool(p *bool, val bool) *Bool {
	*p = val

	return (*Bool)(p)
}

func (b *Bool) Set(val string) error {
	v, err := strconv.ParseBool(val)
	if err != nil {
		return err
	}
	*b = Bool(v)
	return nil
}

func (b *Bool) String() string {
	return strconv.FormatBool(bool(*b))
}

func (b *Bool) Validate() error {
	return nil
}

func (b *Bool) IsEmpty() bool {
	return !bool(*b)
}

// int

type Int int

func NewInt(p *int, val int) *Int {
	*p = val

	return (*Int)(p)
}

func (i *Int) Set(val string) error {
	v, err := strconv.Atoi(val)
	if err != nil {
		return err
	}
	*i = Int(v)
	return nil
}

func (i *Int) String() string {
	return strconv.Itoa(int(*i))
}

func (i *Int) Validate() error {
	if int(*i) < 0 {
		return fmt.Errorf("the value must not be negative")
	}

	return nil
}

func (i *Int) IsEmpty() bool {
	return int(*i) == 0
}
