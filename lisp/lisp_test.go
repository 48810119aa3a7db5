// Copyright © 2024 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/daniel/elpstest"
)

func TestDefine(t *testing.T) {
	tests := elpstest.TestSuite{
		{"define and set!", elpstest.TestSequence{
			{"(define x 1)", "nil", ""},
			{"x", "1", ""},
			{"(set! x (+ x 1))", "nil", ""},
			{"x", "2", ""},
			{"(define x 3)", "already-defined: x is already defined in the current scope", ""},
			{"(set! y 1)", "unbound-symbol: cannot set unbound symbol: y", ""},
			{"y", "unbound-symbol: unbound symbol: y", ""},
		}},
		{"define functions", elpstest.TestSequence{
			{"(define (add a b) (+ a b))", "nil", ""},
			{"(add 1 2)", "3", ""},
			{"add", "Function add", ""},
			{"(define (rest-of a & more) more)", "nil", ""},
			{"(rest-of 1 2 3)", "(2 3)", ""},
			{"(rest-of 1)", "nil", ""},
			{"(add 1)", "type-error: argument is not a number: nil", ""},
		}},
		{"closures", elpstest.TestSequence{
			{"(define (counter) (let ((n 0)) (lambda () (set! n (+ n 1)) n)))", "nil", ""},
			{"(define c (counter))", "nil", ""},
			{"(c)", "1", ""},
			{"(c)", "2", ""},
			{"((counter))", "1", ""},
		}},
		{"set! evaluates in the owning scope", elpstest.TestSequence{
			{"(define total 1)", "nil", ""},
			{"(let ((step 5)) (set! total step))", "unbound-symbol: unbound symbol: step", ""},
			{"total", "1", ""},
			{"(let ((step 5)) (set! total (+ total 1)))", "nil", ""},
			{"total", "2", ""},
			{"(let ((n 0)) (let ((m 3)) (set! n (+ n 1))) n)", "1", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestSpecialOps(t *testing.T) {
	tests := elpstest.TestSuite{
		{"if", elpstest.TestSequence{
			{"(if true 1 2)", "1", ""},
			{"(if nil 1 2)", "2", ""},
			{"(if false 1)", "nil", ""},
			{"(if 0 1 2)", "1", ""},
			{"(if '() 1 2)", "2", ""},
			{"(if true (println 1) (println 2))", "nil", "1\n"},
			{"(if)", "syntax-error: if: expected two or three arguments (got 0)", ""},
		}},
		{"lambda", elpstest.TestSequence{
			{"((lambda (x) (* x x)) 4)", "16", ""},
			{"((lambda (a & rest) rest) 1 2 3)", "(2 3)", ""},
			{"((lambda (a & rest) rest) 1)", "nil", ""},
			{"(lambda (x) x)", "Function lambda", ""},
			{"(lambda (& a b) a)", "syntax-error: & must be followed by exactly one parameter", ""},
		}},
		{"let", elpstest.TestSequence{
			{"(let ((a 1) (b (+ a 1))) (list a b))", "(1 2)", ""},
			{"(let (a) a)", "nil", ""},
			{"(let ((a 1)) (define b 2) (+ a b))", "3", ""},
			{"b", "unbound-symbol: unbound symbol: b", ""},
			{"(let ((a 1 2)) a)", "syntax-error: let: binding is not a (name expr) pair: (a 1 2)", ""},
		}},
		{"do", elpstest.TestSequence{
			{"(do)", "nil", ""},
			{"(do (print 1) (print 2) 3)", "3", "12"},
		}},
		{"for", elpstest.TestSequence{
			{"(for (x [1 2 3]) (* x 2))", "6", ""},
			{"(for (x nil) x)", "nil", ""},
			{"(for (x [1 2]) (print x))", "nil", "12"},
			{"(for (x 1) x)", "type-error: value is not iterable: number", ""},
			{"(for (x [1] when true) x)", "syntax-error: for: unexpected loop clause: (x (list 1) when true)", ""},
		}},
		{"for does not return after its first body form", elpstest.TestSequence{
			{"(for (x [1 2 3]) (print x) (print 0))", "nil", "102030"},
			{"(for (x [1 2]) 10 (* x 2))", "4", ""},
			{"(for (x [1 2 3]) (* x 2) :done)", ":done", ""},
		}},
		{"for/list", elpstest.TestSequence{
			{"(for/list (x (range 4)) (* x x))", "(0 1 4 9)", ""},
			{"(for/list (x (range 6) when (= (% x 2) 0)) x)", "(0 2 4)", ""},
			{`(for/list (c "ab") c)`, `("a" "b")`, ""},
			{"(for/list (p {:a 1}) p)", "((:a . 1))", ""},
			{"(for/list (x nil) x)", "nil", ""},
		}},
		{"and or", elpstest.TestSequence{
			{"(and)", "true", ""},
			{"(and 1 nil 2)", "nil", ""},
			{"(and 1 2)", "2", ""},
			{"(and false (println 1))", "false", ""},
			{"(or)", "false", ""},
			{"(or nil false 3)", "3", ""},
			{"(or nil false)", "false", ""},
			{"(or 1 (println 1))", "1", ""},
		}},
		{"cond", elpstest.TestSequence{
			{"(cond ((= 1 2) :a) ((= 1 1) :b) (else :c))", ":b", ""},
			{"(cond (false 1))", "nil", ""},
			{"(cond (else 1 2))", "2", ""},
			{"(cond (5))", "5", ""},
			{"(cond 5)", "syntax-error: cond: clause is not a list: 5", ""},
		}},
		{"quote", elpstest.TestSequence{
			{"'(a b)", "(a b)", ""},
			{"'a", "a", ""},
			{`(quote "s")`, `"s"`, ""},
			{"'()", "nil", ""},
			{"''a", "(quote a)", ""},
			{"(quote)", "syntax-error: quote: expected one argument (got 0)", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestQuasiquote(t *testing.T) {
	tests := elpstest.TestSuite{
		{"unquote", elpstest.TestSequence{
			{"(define xs '(1 2))", "nil", ""},
			{"`(0 ~(car xs) ~@xs 3)", "(0 1 1 2 3)", ""},
			{"`(a ~@nil b)", "(a b)", ""},
			{"`(a (b ~(+ 1 1)))", "(a (b 2))", ""},
			{"`x", "x", ""},
			{"`{:k ~(+ 1 1)}", "{:k => 2}", ""},
			{"`~@xs", "syntax-error: splicing-unquote used outside of a list", ""},
			{"`(a ~@1)", "type-error: splicing-unquote: cannot splice number", ""},
		}},
		{"nested quasiquote", elpstest.TestSequence{
			{"`(a `(b ~(c ~(+ 1 2))))", "(a (quasiquote (b (unquote (c 3)))))", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestMacros(t *testing.T) {
	tests := elpstest.TestSuite{
		{"defmacro", elpstest.TestSequence{
			{"(defmacro (unless c & body) `(if ~c nil (do ~@body)))", "nil", ""},
			{"(unless false 1 2)", "2", ""},
			{"(unless true (println 1))", "nil", ""},
			{"(macroexpand '(unless x y))", "(if x nil (do y))", ""},
			{"(macroexpand (unless x y))", "(if x nil (do y))", ""},
			{"(macroexpand '(unless a (unless b c)))", "(if a nil (do (if b nil (do c))))", ""},
			{"(macroexpand '(+ 1 2))", "(+ 1 2)", ""},
			{"(macroexpand ''(unless a b))", "(quote (unless a b))", ""},
			{"(apply unless '(true))", "not-callable: unless cannot be applied to evaluated arguments", ""},
		}},
		{"swap through nested set!", elpstest.TestSequence{
			{"(defmacro (swap! a b) `(set! ~a (car (list ~b (set! ~b ~a)))))", "nil", ""},
			{"(define tmp 1)", "nil", ""},
			{"(define other 2)", "nil", ""},
			{"(swap! tmp other)", "nil", ""},
			{"(list tmp other)", "(2 1)", ""},
		}},
		{"macros shadow special operators", elpstest.TestSequence{
			{"(let () (defmacro (if & args) ''shadowed) (if true 1 2))", "shadowed", ""},
			{"(if true 1 2)", "1", ""},
		}},
		{"expansion limit", elpstest.TestSequence{
			{"(defmacro (forever) '(forever))", "nil", ""},
			{"(forever)", "macro-expansion-limit: macro expansion exceeded 1000 levels", ""},
			{"(macroexpand '(forever))", "macro-expansion-limit: macro expansion exceeded 1000 levels", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestTry(t *testing.T) {
	tests := elpstest.TestSuite{
		{"fail", elpstest.TestSequence{
			{`(fail "boom")`, "exception: boom", ""},
			{`(fail "bad" RuntimeException)`, "runtime-exception: bad", ""},
			{`(fail "x" 1)`, "type-error: fail: not an exception class: 1", ""},
		}},
		{"try", elpstest.TestSequence{
			{`(try (fail "boom") (catch e e.message))`, `"boom"`, ""},
			{`(try (fail "boom") (catch e (:condition e)))`, ":exception", ""},
			{"(try (car 1) (catch e (:condition e)))", ":type-error", ""},
			{"(try 1 (catch e 2))", "1", ""},
			{"(try (undefined-thing) (catch err (list 'caught (:condition err))))", "(caught :unbound-symbol)", ""},
			{"(try (car 1) (catch e))", "nil", ""},
			{"(try 1)", "syntax-error: try: expected an expression and a catch clause (got 1 arguments)", ""},
			{"(try 1 (rescue e 2))", "syntax-error: try: expected (catch name handler...) but got (rescue e 2)", ""},
		}},
		{"caught values are exception objects", elpstest.TestSequence{
			{`(define e1 (try (fail "boom") (catch e e)))`, "nil", ""},
			{"(type e1)", "object", ""},
			{"(instance? e1 Exception)", "true", ""},
			{"e1.message", `"boom"`, ""},
			{"(:condition e1)", ":exception", ""},
			{"(define e2 (try (car 1) (catch e e)))", "nil", ""},
			{"(instance? e2 Exception)", "true", ""},
			{"(string? e2.message)", "true", ""},
			{"(:condition e2)", ":type-error", ""},
			{`(try (try (fail "inner") (catch e (fail e))) (catch e e.message))`, `"inner"`, ""},
		}},
		{"custom exceptions", elpstest.TestSequence{
			{"(class MyError :extends Exception)", "nil", ""},
			{`(try (fail "x" MyError) (catch e (list (:condition e) e.message)))`, `(:exception "x")`, ""},
			{"(class Fatal :extends RuntimeException)", "nil", ""},
			{`(fail (Fatal "down"))`, "runtime-exception: down", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestClasses(t *testing.T) {
	tests := elpstest.TestSuite{
		{"inheritance", elpstest.TestSequence{
			{`(class Shape (new name) (area () 0) (describe () (+ this.name " area " (this.area))))`, "nil", ""},
			{"(class Circle :extends Shape (new r) (area () (* 3 this.r this.r)))", "nil", ""},
			{`(define c (Circle "c" 2))`, "nil", ""},
			{"c.r", "2", ""},
			{"c.name", `"c"`, ""},
			{"(c.area)", "12", ""},
			{"(c.describe)", `"c area 12"`, ""},
			{"c", `Circle {name => "c" r => 2}`, ""},
			{"Circle", "Class Circle", ""},
			{"c.area", "Function Circle.area", ""},
			{"(instance? c Shape)", "true", ""},
			{"(instance? c Object)", "true", ""},
			{"(instance? c Exception)", "false", ""},
			{"(set-field! 'r 3 c)", `Circle {name => "c" r => 3}`, ""},
			{"(get 'r c)", "3", ""},
			{"c.nope", "type-error: object has no property nope", ""},
			{"(Circle)", "Circle {name => nil r => nil}", ""},
			{`(new Shape "s")`, `Shape {name => "s"}`, ""},
		}},
		{"super", elpstest.TestSequence{
			{`(class Shape (new name) (area () 0) (describe () (+ this.name " area " (this.area))))`, "nil", ""},
			{`(class Square :extends Shape (new side) (area () (* this.side this.side)) (describe () (+ "square: " (super.describe))))`, "nil", ""},
			{`(define sq (Square "sq" 3))`, "nil", ""},
			{"(sq.describe)", `"square: sq area 9"`, ""},
		}},
		{"static methods", elpstest.TestSequence{
			{"(class Counter (new n) (static zero () (Counter 0)) (inc () (Counter (+ this.n 1))))", "nil", ""},
			{"(define z (Counter.zero))", "nil", ""},
			{"z.n", "0", ""},
			{"(:n (z.inc))", "1", ""},
			{"Counter.__name__", `"Counter"`, ""},
		}},
		{"init", elpstest.TestSequence{
			{"(class Pt (new x y) (init (fields) (set-field! 'sum (+ (:x fields) (:y fields)) this)))", "nil", ""},
			{"(:sum (Pt 1 2))", "3", ""},
		}},
		{"init runs superclass first", elpstest.TestSequence{
			{"(class Journal (new entries) (add (x) (set-field! 'entries (cons x this.entries) this)))", "nil", ""},
			{"(define log (Journal nil))", "nil", ""},
			{"(class A (new a) (init (fields) (log.add (list :a (:a fields)))))", "nil", ""},
			{"(class B :extends A (new b) (init (fields) (log.add (list :b (:a fields) (:b fields)))))", "nil", ""},
			{"(class C :extends B (new c))", "nil", ""},
			{"(define b (B 1 2))", "nil", ""},
			{"log.entries", "((:b 1 2) (:a 1))", ""},
			{"(set-field! 'entries nil log)", "Journal {entries => nil}", ""},
			{"(define c (C 1 2 3))", "nil", ""},
			{"log.entries", "((:b 1 2) (:a 1))", ""},
			{"c.c", "3", ""},
		}},
		{"rest fields", elpstest.TestSequence{
			{"(class Bag (new label & items))", "nil", ""},
			{"(Bag :a 1 2)", "Bag {label => :a items => (1 2)}", ""},
		}},
		{"duplicate methods", elpstest.TestSequence{
			{"(class Dup (m () 1) (m () 2))", "already-defined: class Dup: method m is already defined", ""},
		}},
		{"extending a non-class", elpstest.TestSequence{
			{"(class Bad :extends 1)", "type-error: class: cannot extend number", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestModules(t *testing.T) {
	tests := elpstest.TestSuite{
		{"inline modules", elpstest.TestSequence{
			{"(module geometry (provide area) (define (area w h) (* w h)) (define hidden 1))", "Module geometry", ""},
			{"(geometry.area 2 3)", "6", ""},
			{"geometry.hidden", "unbound-symbol: module geometry does not export hidden", ""},
			{"(module everything (define a 1) (define b 2))", "Module everything", ""},
			{"everything.b", "2", ""},
			{"(module bad (provide nope))", "unbound-symbol: provide: nope is not defined in module bad", ""},
			{"(provide x)", "syntax-error: provide used outside of a module", ""},
		}},
		{"import native modules", elpstest.TestSequence{
			{"(import Math)", "Module Math", ""},
			{"(Math.floor 1.5)", "1", ""},
			{"(import Math)", "Module Math", ""},
			{"(import String :as s)", "Module String", ""},
			{`(s.capitalize "abc")`, `"Abc"`, ""},
			{"(import Base64 :open)", "Module Base64", ""},
			{`(decode (encode "hi"))`, `"hi"`, ""},
			{"(import Base64 :open)", "Module Base64", ""},
			{"(import Nope)", "unresolved-module: Could not resolve file for module Nope", ""},
			{"(import Math :bogus)", "syntax-error: import: expected :as alias or :open but got (:bogus)", ""},
		}},
		{"imports are not exported", elpstest.TestSequence{
			{"(module m (import Math) (define x 1))", "Module m", ""},
			{"m.x", "1", ""},
			{"m.Math", "unbound-symbol: module m does not export Math", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestAsync(t *testing.T) {
	tests := elpstest.TestSuite{
		{"async functions", elpstest.TestSequence{
			{"(async (double x) (* 2 x))", "nil", ""},
			{"(await (double 21))", "42", ""},
			{"(double 1)", "Promise fulfilled", ""},
			{"(promise? (double 1))", "true", ""},
			{"(await (all (map double [1 2 3])))", "(2 4 6)", ""},
			{"(await 5)", "5", ""},
			{"(define half (async (lambda (x) (/ x 2))))", "nil", ""},
			{"(await (half 3))", "1.5", ""},
		}},
		{"ordering", elpstest.TestSequence{
			{"(async (say x) (print x))", "nil", ""},
			{"(do (say 1) (print 2))", "nil", "21"},
			{"(do (define p (say 1)) (print 2) (await p) (print 3))", "nil", "213"},
		}},
		{"rejection", elpstest.TestSequence{
			{`(define p ((async (lambda () (fail "no")))))`, "nil", ""},
			{"(:state p)", ":rejected", ""},
			{"(try (await p) (catch e e.message))", `"no"`, ""},
			{"(await p)", "exception: no", ""},
		}},
		{"sleep", elpstest.TestSequence{
			{"(await (sleep 1))", "nil", ""},
			{"(sleep -1)", "error: negative sleep duration: -1", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestMemberAccess(t *testing.T) {
	tests := elpstest.TestSuite{
		{"maps", elpstest.TestSequence{
			{"(define m {:a {:b 1} \"s\" 2})", "nil", ""},
			{"m.a.b", "1", ""},
			{"m.s", "2", ""},
			{"m.z", "nil", ""},
			{"(prop 'a m)", "{:b => 1}", ""},
			{"(:a m)", "{:b => 1}", ""},
			{"(:a)", "arity-error: keyword :a called without an argument", ""},
		}},
		{"sequences", elpstest.TestSequence{
			{`(define s "four")`, "nil", ""},
			{"s.length", "4", ""},
			{"[1 2 3].length", "3", ""},
			{"(prop 'length 1)", "type-error: number has no property length", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestBuiltins(t *testing.T) {
	tests := elpstest.TestSuite{
		{"arithmetic", elpstest.TestSequence{
			{"(+ 1 2 3)", "6", ""},
			{"((- 10) 3)", "7", ""},
			{"((compose (* 2) (+ 1)) 3)", "7", ""},
			{`(+ "a" 1 :b)`, `"a1:b"`, ""},
			{"(/ 1 0)", "Infinity", ""},
			{"(// 7 2)", "3", ""},
			{"(% 7 3)", "1", ""},
			{"(** 2 10)", "1024", ""},
			{"(+ 1 :a)", "type-error: argument is not a number: keyword", ""},
		}},
		{"comparison", elpstest.TestSequence{
			{"(< 1 2)", "true", ""},
			{"(>= 1 2)", "false", ""},
			{`(<=> "b" "a")`, "1", ""},
			{`(< 1 "a")`, "type-error: cannot compare number and string", ""},
			{"(= '(1) '(1))", "false", ""},
			{"(equal? '(1) '(1))", "true", ""},
			{"(= :a :a)", "true", ""},
			{"(!= 1 2)", "true", ""},
		}},
		{"types", elpstest.TestSequence{
			{"(type 'a)", "symbol", ""},
			{"(type [1])", "list", ""},
			{"(type nil)", "nil", ""},
			{"(type (cons 1 2))", "pair", ""},
			{"(type {})", "map", ""},
			{"(type Object)", "class", ""},
			{"(not nil)", "true", ""},
			{`(empty? "")`, "true", ""},
			{"(true? 1)", "false", ""},
			{"(list? nil)", "true", ""},
			{"(function? Object)", "true", ""},
		}},
		{"lists", elpstest.TestSequence{
			{"(map (lambda (x) (* x 10)) [1 2])", "(10 20)", ""},
			{"(filter (lambda (x) (> x 1)) [1 2 3])", "(2 3)", ""},
			{"(foldl (lambda (acc x) (cons x acc)) nil [1 2 3])", "(3 2 1)", ""},
			{"(foldr (lambda (acc x) (cons x acc)) nil [1 2 3])", "(1 2 3)", ""},
			{"(reduce + 0 (range 5))", "10", ""},
			{"(concat [1] nil [2 3])", "(1 2 3)", ""},
			{"(define xs [1 2])", "nil", ""},
			{"(append xs 3)", "(1 2 3)", ""},
			{"xs", "(1 2)", ""},
			{"(nth [1 2] 5)", "error: index out of bounds: list does not contain 6 elements", ""},
			{"(car nil)", "nil", ""},
			{"(cdr [1])", "nil", ""},
			{"(last [1 2 3])", "3", ""},
			{"(cons 1 2)", "(1 . 2)", ""},
			{"(car (cons 1 2))", "1", ""},
			{"(to-list (range 3))", "(0 1 2)", ""},
			{"(range 3)", "(range 0 3 1)", ""},
			{"(length (range 1 10 3))", "3", ""},
			{"(each print [1 2])", "nil", "12"},
		}},
		{"strings", elpstest.TestSequence{
			{`(length "héllo")`, "5", ""},
			{`(reverse "abc")`, `"cba"`, ""},
			{`(string "a" 1)`, `"\"a\" 1"`, ""},
			{`(number "2.5")`, "2.5", ""},
			{`(symbol "s")`, "s", ""},
			{`(keyword "k")`, ":k", ""},
			{`(concat "a" "b")`, `"ab"`, ""},
			{`(nth "abc" 1)`, `"b"`, ""},
		}},
		{"maps", elpstest.TestSequence{
			{"(keys (assoc {:a 1} (cons :b 2)))", "(:a :b)", ""},
			{"(dissoc {:a 1 :b 2} :a)", "{:b => 2}", ""},
			{"(has? :a {:a nil})", "true", ""},
			{"(merge {:a 1} {:a 2 :b 3})", "{:a => 2 :b => 3}", ""},
			{"(make-map (cons :a 1) [:b 2])", "{:a => 1 :b => 2}", ""},
			{"(define m {})", "nil", ""},
			{"(set :k 1 m)", "{:k => 1}", ""},
			{"(get :k m)", "1", ""},
			{"(get :missing m)", "nil", ""},
			{"(values {:a 1 :b 2})", "(1 2)", ""},
			{"(entries {:a 1})", "((:a . 1))", ""},
			{"{[1] 2}", "type-error: unhashable type: list", ""},
		}},
		{"set on a list leaves shared structure alone", elpstest.TestSequence{
			{"(define xs '(1 2 3))", "nil", ""},
			{"(define ys (cdr xs))", "nil", ""},
			{"(set 0 9 ys)", "(9 3)", ""},
			{"ys", "(2 3)", ""},
			{"xs", "(1 2 3)", ""},
			{"(define (digits) '(0 1))", "nil", ""},
			{"(set 1 7 (digits))", "(0 7)", ""},
			{"(digits)", "(0 1)", ""},
			{"(set 3 0 xs)", "error: index out of bounds: 3", ""},
		}},
		{"functions", elpstest.TestSequence{
			{"(apply + [1 2])", "3", ""},
			{"(|> 3 (+ 1) (* 2))", "8", ""},
			{"((pipe (+ 1) (* 2)) 3)", "8", ""},
			{"(define (add3 a b c) (+ a b c))", "nil", ""},
			{"((((curry add3) 1) 2) 3)", "6", ""},
			{"(1 2)", "not-callable: value is not callable: 1", ""},
		}},
		{"printing", elpstest.TestSequence{
			{`(println "hi" 1)`, "nil", "hi 1\n"},
			{"(print :a)", "nil", ":a"},
			{`(println ["a"])`, "nil", "(a)\n"},
		}},
		{"read and eval", elpstest.TestSequence{
			{`(read "(+ 1 2) x")`, "((+ 1 2) x)", ""},
			{`(eval (car (read "(+ 1 2)")))`, "3", ""},
			{`(eval '(list 1 2))`, "(1 2)", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func TestStackOverflow(t *testing.T) {
	tests := elpstest.TestSuite{
		{"unbounded recursion", elpstest.TestSequence{
			{"(define (loop n) (loop (+ n 1)))", "nil", ""},
			{"(loop 0)", "stack-overflow: stack height exceeded maximum: 25001", ""},
			{"(try (loop 0) (catch e (:condition e)))", ":stack-overflow", ""},
		}},
	}
	elpstest.RunTestSuite(t, tests)
}

func BenchmarkFib(b *testing.B) {
	elpstest.RunBenchmark(b, `
(define (fib n)
  (if (< n 2)
    n
    (+ (fib (- n 1)) (fib (- n 2)))))
(fib 15)
`)
}
