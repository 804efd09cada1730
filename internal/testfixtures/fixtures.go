// Package testfixtures holds sample Arabic documents shared by package tests.
package testfixtures

// Contract is a construction contract with every contract slot populated.
const Contract = `عقد تنفيذ مشروع إنشاء مبنى إداري

المادة الأولى: أطراف العقد
الطرف الأول: وزارة الشؤون البلدية والقروية، ويشار إليه فيما بعد بالمالك
الطرف الثاني: شركة البناء المتقدم للمقاولات، ويشار إليه فيما بعد بالمقاول
اسم المشروع: إنشاء مبنى إداري بمدينة الرياض
موقع المشروع: الرياض - حي الملقا
مساحة المشروع: 5,000 م2

المادة الثانية: مدة التنفيذ
مدة التنفيذ 18 شهراً تبدأ من تاريخ تسليم الموقع.

المادة الثالثة: قيمة العقد
قيمة العقد الإجمالية هي 25,000,000 ريال شاملة ضريبة القيمة المضافة.

المادة الرابعة: الضمانات
الضمان الابتدائي: 2% من قيمة العقد.
الضمان النهائي: 5% من قيمة العقد ويبقى سارياً حتى الاستلام النهائي.

المادة الخامسة: غرامة التأخير
غرامة التأخير: 1% من قيمة العقد عن كل أسبوع تأخير بحد أقصى 10% من قيمة العقد.

المادة السادسة: الدفعات
تصرف الدفعات شهرياً بموجب مستخلصات معتمدة خلال 30 يوماً من تاريخ اعتمادها، ويحتجز 10% من قيمة كل مستخلص.

المادة السابعة: الضمان والصيانة
فترة الضمان سنة واحدة من تاريخ الاستلام الابتدائي.

المادة الثامنة: فسخ العقد
يحق للطرف الأول فسخ العقد في حال إخلال الطرف الثاني بالتزاماته بعد إنذاره كتابياً.

المادة التاسعة: تسوية النزاعات
تتم تسوية النزاعات ودياً وفي حال تعذر ذلك تحال إلى ديوان المظالم.
`

// ContractEasternDigits is Contract's key clauses written with Eastern-Arabic digits and tatweel.
const ContractEasternDigits = `عقد مقاولة

الطرف الأول: أمانة منطقة الرياض
الطرف الثاني: مؤسسة الإعمار الحديثة

قيمة العقد: ٢٥٬٠٠٠٬٠٠٠ ريـال
مدة التنفيذ: ١٨ شهراً
الضمان النهائي: ٥٪ من قيمة العقد.
`

// FinancialTender is a tender whose payment terms delay the first payment by two months.
const FinancialTender = `كراسة الشروط والمواصفات
مناقصة رقم: T-2024-015
اسم المشروع: إنشاء مدرسة ابتدائية
الجهة المالكة: وزارة التعليم
موقع المشروع: جدة
تاريخ الطرح: 01/03/2024م
آخر موعد لتقديم العروض: 15/04/2024م

القيمة التقديرية للمشروع: 12,000,000 ريال
مدة التنفيذ: سنة ونصف من تاريخ تسليم الموقع.
الضمان الابتدائي: 2% من القيمة التقديرية.
الضمان النهائي: 6% من قيمة العقد.
غرامة التأخير: 1% عن كل أسبوع تأخير بحد أقصى 10% من قيمة العقد.
شروط الدفع: تصرف المستخلصات شهرياً خلال 60 يوماً من تاريخ اعتمادها ويحتجز 10% من قيمة كل مستخلص.

شروط التأهيل:
- تصنيف المقاول في مجال المباني الدرجة الثانية على الأقل
- تنفيذ ثلاثة مشاريع مماثلة خلال السنوات الخمس الأخيرة
- سجل تجاري ساري المفعول

الضمانات المطلوبة:
- ضمان ابتدائي بنسبة 2%
- ضمان نهائي بنسبة 6%

معايير التقييم:
- العرض الفني: 40%
- العرض المالي: 60%
`

// TechnicalTender is a tender with four trades of technical specifications.
const TechnicalTender = `كراسة الشروط والمواصفات
مناقصة رقم: T-2024-021
اسم المشروع: إنشاء مركز صحي
الجهة المالكة: وزارة الصحة
موقع المشروع: الدمام
مدة التنفيذ: 24 شهراً
القيمة التقديرية: 30,000,000 ريال

المواصفات الفنية:
الأعمال الإنشائية:
- خرسانة مسلحة بمقاومة 30 نيوتن للأساسات والأعمدة
- حديد تسليح مطابق للمواصفات القياسية السعودية
الأعمال المعمارية:
- بلاط بورسلين للأرضيات
- دهانات داخلية وخارجية
الأعمال الكهربائية:
- لوحات توزيع رئيسية وفرعية
- نظام إنارة موفر للطاقة
الأعمال الميكانيكية:
- نظام تكييف مركزي
- شبكة تغذية وصرف صحي
`

// Drawing is a small ASCII DXF floor plan with concrete, block and steel layers.
const Drawing = `0
SECTION
2
HEADER
9
$INSUNITS
70
6
0
ENDSEC
0
SECTION
2
ENTITIES
0
LINE
8
CONCRETE
10
0.0
20
0.0
11
20.0
21
0.0
0
LINE
8
CONCRETE
10
20.0
20
0.0
11
20.0
21
10.0
0
LWPOLYLINE
8
BLOCK-WALLS
90
4
70
1
10
0.0
20
0.0
10
20.0
20
0.0
10
20.0
20
10.0
10
0.0
20
10.0
0
CIRCLE
8
STEEL-COLUMNS
10
5.0
20
5.0
40
0.3
0
TEXT
8
ANNOTATION
10
2.0
20
2.0
1
غرفة اجتماعات
0
ENDSEC
0
EOF
`
