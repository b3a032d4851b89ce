// Copyright Tinkerlang Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package blocktree

import (
	"fmt"
	"unicode"

	"github.com/pkg/errors"

	"github.com/tinkerlang/bindery/pkg/bindery"
)

// Parse reads a block tree from its s-expression form, connecting every block
// as it goes (and hence driving binding resolution and type unification
// exactly as interactive edits would).  The grammar:
//
//	(let NAME value body)     declare NAME over body
//	(letrec NAME value body)  as let, but visible within value too
//	(lambda NAME body)        abstract over NAME
//	(apply fn arg)            application
//	(var NAME)                use site
//	(num) (text) (bool)       literals
//	_                         an empty slot
//
// Let declarations are generalised once their value subtree is in place, so
// subsequent uses in the body instantiate the declaration's scheme afresh.
func Parse(env *bindery.Environment, input string) (*Block, error) {
	p := &parser{[]rune(input), 0}
	//
	block, err := p.parseBlock(env)
	if err != nil {
		return nil, err
	}
	//
	p.skipWhitespace()
	//
	if !p.exhausted() {
		return nil, p.errorf("trailing input")
	}
	//
	return block, nil
}

// parser is a minimal recursive-descent reader over the s-expression form.
type parser struct {
	input []rune
	index int
}

func (p *parser) parseBlock(env *bindery.Environment) (*Block, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	//
	head, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	//
	var block *Block
	//
	switch head {
	case "let", "letrec":
		block, err = p.parseLet(env, head == "letrec")
	case "lambda":
		block, err = p.parseLambda(env)
	case "apply":
		block = NewApply(env)
		err = p.parseSlots(env, block, SlotFn, SlotArg)
	case "var":
		var name string
		//
		if name, err = p.parseIdent(); err == nil {
			block = NewVar(env, name)
		}
	case "num":
		block = NewLiteral(env, NumType)
	case "text":
		block = NewLiteral(env, TextType)
	case "bool":
		block = NewLiteral(env, BoolType)
	default:
		return nil, p.errorf("unknown block \"%s\"", head)
	}
	//
	if err != nil {
		return nil, err
	}
	//
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	//
	return block, nil
}

func (p *parser) parseLet(env *bindery.Environment, recursive bool) (*Block, error) {
	name, err := p.parseIdent()
	//
	if err != nil {
		return nil, err
	}
	//
	block := NewLet(env, name, recursive)
	//
	if err := p.parseSlot(env, block, SlotValue); err != nil {
		return nil, err
	}
	// Generalise before the body attaches, such that body uses are
	// polymorphic.
	block.Finalise()
	//
	return block, p.parseSlot(env, block, SlotBody)
}

func (p *parser) parseLambda(env *bindery.Environment) (*Block, error) {
	param, err := p.parseIdent()
	//
	if err != nil {
		return nil, err
	}
	//
	block := NewLambda(env, param)
	//
	return block, p.parseSlot(env, block, SlotBody)
}

func (p *parser) parseSlots(env *bindery.Environment, block *Block, fields ...string) error {
	for _, field := range fields {
		if err := p.parseSlot(env, block, field); err != nil {
			return err
		}
	}
	//
	return nil
}

func (p *parser) parseSlot(env *bindery.Environment, block *Block, field string) error {
	p.skipWhitespace()
	// An underscore leaves the slot empty.
	if !p.exhausted() && p.input[p.index] == '_' {
		p.index++
		return nil
	}
	//
	child, err := p.parseBlock(env)
	if err != nil {
		return err
	}
	//
	if err := block.Connect(field, child); err != nil {
		return errors.Wrapf(err, "connecting %s into \"%s\" of %s", child, field, block)
	}
	//
	return nil
}

func (p *parser) parseIdent() (string, error) {
	p.skipWhitespace()
	start := p.index
	//
	for !p.exhausted() && isIdentRune(p.input[p.index]) {
		p.index++
	}
	//
	if start == p.index {
		return "", p.errorf("expected identifier")
	}
	//
	return string(p.input[start:p.index]), nil
}

func (p *parser) expect(r rune) error {
	p.skipWhitespace()
	//
	if p.exhausted() || p.input[p.index] != r {
		return p.errorf("expected '%c'", r)
	}
	//
	p.index++
	//
	return nil
}

func (p *parser) skipWhitespace() {
	for !p.exhausted() && unicode.IsSpace(p.input[p.index]) {
		p.index++
	}
}

func (p *parser) exhausted() bool {
	return p.index >= len(p.input)
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return errors.Errorf("%s at offset %d", msg, p.index)
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '\''
}
