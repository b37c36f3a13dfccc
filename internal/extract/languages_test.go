package extract

import (
	"reflect"
	"testing"
)

func TestTypeScriptExtract(t *testing.T) {
	src := []byte(`import React from 'react';
import { useState, useEffect as effect } from './hooks';
import * as utils from '../utils';
import './side-effect';
export { helper } from './helper';
const widget = require('./widget');

export default class Dashboard {
  render() {}
}

export function buildPanel(config) {}
export const formatLabel = (value) => value.trim();
const internal = async () => {};
`)

	e := NewTypeScriptExtractor()
	facts := e.Extract("src/dashboard.ts", src)

	wantImports := map[string]struct {
		dynamic   bool
		isDefault bool
		specs     []string
		line      int
	}{
		"react":         {isDefault: true, specs: []string{"React"}, line: 1},
		"./hooks":       {specs: []string{"useState", "useEffect"}, line: 2},
		"../utils":      {specs: []string{"utils"}, line: 3},
		"./side-effect": {line: 4},
		"./helper":      {line: 5},
		"./widget":      {dynamic: true, line: 6},
	}

	if len(facts.Imports) != len(wantImports) {
		t.Fatalf("got %d imports, want %d: %+v", len(facts.Imports), len(wantImports), facts.Imports)
	}
	for _, imp := range facts.Imports {
		want, ok := wantImports[imp.Source]
		if !ok {
			t.Errorf("unexpected import %q", imp.Source)
			continue
		}
		if imp.IsDynamic != want.dynamic {
			t.Errorf("%s: IsDynamic = %v, want %v", imp.Source, imp.IsDynamic, want.dynamic)
		}
		if imp.IsDefault != want.isDefault {
			t.Errorf("%s: IsDefault = %v, want %v", imp.Source, imp.IsDefault, want.isDefault)
		}
		if want.specs != nil && !reflect.DeepEqual(imp.Specifiers, want.specs) {
			t.Errorf("%s: Specifiers = %v, want %v", imp.Source, imp.Specifiers, want.specs)
		}
		if imp.Line != want.line {
			t.Errorf("%s: Line = %d, want %d", imp.Source, imp.Line, want.line)
		}
	}

	for _, fn := range []string{"buildPanel", "formatLabel", "internal"} {
		if !contains(facts.Functions, fn) {
			t.Errorf("missing function %q in %v", fn, facts.Functions)
		}
	}
	if !contains(facts.Classes, "Dashboard") {
		t.Errorf("missing class Dashboard in %v", facts.Classes)
	}
	if !contains(facts.Exports, "Dashboard") || !contains(facts.Exports, "buildPanel") {
		t.Errorf("exports missing: %v", facts.Exports)
	}
}

func TestGoExtract(t *testing.T) {
	src := []byte(`package server

import (
	"fmt"
	q "example.com/pkg/queue"
)

import "os"

// Handler serves requests.
type Handler struct{}

type sessionKey string

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) serve() { fmt.Println(q.Len(), os.Args) }
`)

	e := NewGoExtractor()
	facts := e.Extract("server.go", src)

	sources := make([]string, 0, len(facts.Imports))
	for _, imp := range facts.Imports {
		sources = append(sources, imp.Source)
	}
	for _, want := range []string{"fmt", "example.com/pkg/queue", "os"} {
		if !contains(sources, want) {
			t.Errorf("missing import %q in %v", want, sources)
		}
	}

	if !contains(facts.Exports, "Handler") || !contains(facts.Exports, "NewHandler") {
		t.Errorf("exports = %v", facts.Exports)
	}
	if contains(facts.Exports, "sessionKey") || contains(facts.Exports, "serve") {
		t.Errorf("unexported names leaked into exports: %v", facts.Exports)
	}
	if !contains(facts.Functions, "serve") {
		t.Errorf("functions = %v", facts.Functions)
	}
	if !contains(facts.Classes, "Handler") {
		t.Errorf("classes = %v", facts.Classes)
	}

	// Go imports never resolve to files
	if _, ok := e.ResolveSpecifier("example.com/pkg/queue"); ok {
		t.Error("go specifiers must never resolve")
	}
}

func TestPythonExtract(t *testing.T) {
	src := []byte(`from .models import User, Role as R
from ..common.db import connect
import os
import app.settings

class UserService:
    def find(self): pass

def make_service():
    pass

def _private(): pass
`)

	e := NewPythonExtractor()
	facts := e.Extract("app/services.py", src)

	var rel []string
	for _, imp := range facts.Imports {
		if r, ok := e.ResolveSpecifier(imp.Source); ok {
			rel = append(rel, r)
		}
	}
	want := []string{"./models", "../common/db"}
	if !reflect.DeepEqual(rel, want) {
		t.Errorf("relative imports = %v, want %v", rel, want)
	}

	for _, imp := range facts.Imports {
		if imp.Source == ".models" {
			if !reflect.DeepEqual(imp.Specifiers, []string{"User", "Role"}) {
				t.Errorf(".models specifiers = %v", imp.Specifiers)
			}
		}
	}

	if !contains(facts.Classes, "UserService") {
		t.Errorf("classes = %v", facts.Classes)
	}
	if !contains(facts.Functions, "make_service") || !contains(facts.Functions, "_private") {
		t.Errorf("functions = %v", facts.Functions)
	}
	// only top-level, non-underscore names are exports
	if contains(facts.Exports, "_private") || contains(facts.Exports, "find") {
		t.Errorf("exports = %v", facts.Exports)
	}
}

func TestRustModResolution(t *testing.T) {
	src := []byte(`mod parser;
pub mod lexer;
use std::collections::HashMap;

pub fn tokenize() {}
pub struct Token;
`)

	e := NewRustExtractor()
	facts := e.Extract("src/lib.rs", src)

	var rel []string
	for _, imp := range facts.Imports {
		if r, ok := e.ResolveSpecifier(imp.Source); ok {
			rel = append(rel, r)
		}
	}
	if !reflect.DeepEqual(rel, []string{"./parser", "./lexer"}) {
		t.Errorf("relative imports = %v", rel)
	}
	if !contains(facts.Exports, "tokenize") || !contains(facts.Exports, "Token") {
		t.Errorf("exports = %v", facts.Exports)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		path     string
		language string
		found    bool
	}{
		{"a/b/c.ts", "typescript", true},
		{"a/b/c.tsx", "typescript", true},
		{"a/b/c.mjs", "javascript", true},
		{"main.go", "go", true},
		{"scripts/run.py", "python", true},
		{"Build.java", "java", true},
		{"src/lib.rs", "rust", true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, ok := r.ForPath(tt.path)
			if ok != tt.found {
				t.Fatalf("ForPath found=%v, want %v", ok, tt.found)
			}
			if ok && e.Language() != tt.language {
				t.Errorf("language = %s, want %s", e.Language(), tt.language)
			}
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
