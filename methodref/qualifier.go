package methodref

import (
	"strings"

	"github.com/heshanpadmasiri/lambdaref/diagnostics"
	"github.com/heshanpadmasiri/lambdaref/java"
)

// classReferenceName is the qualified name of cls, or its simple name when it
// has no qualified name. Anonymous classes have neither.
func classReferenceName(cls *java.Class) string {
	if cls.QualifiedName != "" {
		return cls.QualifiedName
	}
	return cls.Name
}

// methodCallQualifier composes the part of the method reference before ::
func (a *Analyzer) methodCallQualifier(lambda Lambda, call *MethodCall, functionalType java.Type, params []*java.Variable, member *java.Method) (string, bool) {
	declaring := member.Class
	diagnostics.Assert(declaring != nil, "method %s has no declaring class", member.Name)

	if call.Qualifier != nil {
		if a.isReceiverType(functionalType, params, member) {
			return a.receiverQualifier(lambda, call, params, member)
		}
		return call.QualifierText, true
	}
	if member.IsStatic() {
		return classReferenceName(declaring), true
	}

	innermost := a.resolver.EnclosingClass(lambda.File, call.Node)
	holder := innermost
	for holder != nil && !a.resolver.IsSubtypeOrSelf(holder, declaring) {
		holder = holder.Outer
	}
	if holder != nil && declaring != innermost && holder != innermost {
		if holder.Name == "" {
			return "", false
		}
		return holder.Name + ".this", true
	}
	return "this", true
}

// isReceiverType reports whether the functional type calls member in unbound
// form: the first SAM parameter supplies the receiver and the rest are the
// member's arguments
func (a *Analyzer) isReceiverType(functionalType java.Type, params []*java.Variable, member *java.Method) bool {
	sig, ok := a.resolver.FunctionalMethod(functionalType)
	if !ok || len(sig.Params) != member.ParamCount()+1 {
		return false
	}
	receiver := sig.Params[0]
	if !receiver.Known() || receiver.Var {
		if len(params) == 0 {
			return false
		}
		receiver = params[0].Type
	}
	cls := a.resolver.ClassOf(receiver)
	return cls != nil && a.resolver.IsSubtypeOrSelf(cls, member.Class)
}

// receiverQualifier names the receiver type of an unbound method reference
func (a *Analyzer) receiverQualifier(lambda Lambda, call *MethodCall, params []*java.Variable, member *java.Method) (string, bool) {
	if member.IsStatic() {
		return "", false
	}
	unambiguous := a.nonAmbiguousReceiver(params, member, 0)
	if unambiguous == nil {
		return "", false
	}
	if unambiguous.Class != member.Class {
		return classReferenceName(unambiguous.Class), true
	}
	if call.Qualifier.Kind() == "identifier" {
		v := a.resolver.ResolveName(lambda.File, call.Qualifier, call.Qualifier.Utf8Text(lambda.File.Source))
		if v != nil && !v.TypeElement && isOneOf(v, params) {
			return classReferenceName(member.Class), true
		}
	}
	if t := a.resolver.TypeOf(lambda.File, call.Qualifier); t.Known() {
		// a wildcard parameterization cannot be written as a reference qualifier
		if t.HasWildcardArgs() {
			return t.Erasure().CanonicalText(), true
		}
		return t.CanonicalText(), true
	}
	return classReferenceName(member.Class), true
}

// constructorQualifier composes the type part of a ::new reference
func (a *Analyzer) constructorQualifier(lambda Lambda, call *ConstructorCall) (string, bool) {
	if call.Anonymous {
		return "", false
	}
	if !call.Array {
		cls := a.resolver.ResolveConstructedClass(lambda.File, call.Node)
		if cls == nil {
			return "", false
		}
		name := classReferenceName(cls)
		return name, name != ""
	}
	t := a.resolver.TypeOf(lambda.File, call.Node)
	if !t.IsArray() || !t.DeepElement().IsPrimitive() {
		return "", false
	}
	return t.DeepElement().Name + strings.Repeat("[]", t.Dims), true
}

func isOneOf(v *java.Variable, params []*java.Variable) bool {
	for _, p := range params {
		if v.Same(p) {
			return true
		}
	}
	return false
}
