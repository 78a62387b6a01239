// Package mapping loads symbol-mapping tables and answers rename queries for
// classes, fields and methods.
//
// # Formats
//
// The format is detected from the first meaningful line:
//
//	ProGuard (Mojang .txt)   net.minecraft.Foo -> a:
//	                             int count -> b
//	                             1:4:void tick(int) -> c
//	CSRG                     a Foo
//	                         a b count
//	                         a c (I)V tick
//	SRG                      CL: a Foo
//	                         FD: a/b Foo/count
//	                         MD: a/c (I)V Foo/tick (I)V
//	CSV                      kind,owner,name,descriptor,target
//	                         class,a,,,Foo
//	                         method,a,c,(I)V,tick
//
// A ProGuard table declares the obfuscated names as its source side, so the
// Mojang table maps obfuscated -> Mojang as loaded and Mojang -> obfuscated
// when reversed. The other formats map left to right as written.
//
// # Member lookup
//
// Member keys are (owner, name) for fields and (owner, name, descriptor) for
// methods, all in source naming. When the literal owner has no entry the
// lookup climbs the class hierarchy supplied by an Inheritance, superclass
// before interfaces, and takes the first class that has one. A member with no
// entry anywhere keeps its name.
package mapping
